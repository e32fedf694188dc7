package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestFindingSetDeduplication verifies that the first finding with a name wins.
func TestFindingSetDeduplication(t *testing.T) {
	t.Parallel()

	t.Run("first inserted survives", func(t *testing.T) {
		t.Parallel()

		fs := NewFindingSet(
			Finding{Name: "BreachA", Year: "2019", SourceType: "first"},
			Finding{Name: "BreachB", Year: "2015"},
			Finding{Name: "BreachA", Year: "2012", SourceType: "second"},
		)

		if fs.Len() != 2 {
			t.Fatalf("expected 2 findings, got %d", fs.Len())
		}
		for _, f := range fs.Findings() {
			if f.Name == "BreachA" && f.SourceType != "first" {
				t.Errorf("expected first BreachA to survive, got %+v", f)
			}
		}
	})

	t.Run("Add reports duplicates", func(t *testing.T) {
		t.Parallel()

		var fs FindingSet
		if !fs.Add(Finding{Name: "x"}) {
			t.Error("expected first Add to succeed")
		}
		if fs.Add(Finding{Name: "x"}) {
			t.Error("expected duplicate Add to be rejected")
		}
		if !fs.Contains("x") {
			t.Error("expected Contains to find x")
		}
	})
}

// TestFindingSetOrdering verifies ascending year order with unknown years last.
func TestFindingSetOrdering(t *testing.T) {
	t.Parallel()

	fs := NewFindingSet(
		Finding{Name: "u1", Year: YearUnknown},
		Finding{Name: "y2020", Year: "2020"},
		Finding{Name: "weird", Year: "20x1"},
		Finding{Name: "y2012", Year: "2012"},
		Finding{Name: "u2", Year: ""},
		Finding{Name: "y2016", Year: "2016"},
	)

	var names []string
	for _, f := range fs.Findings() {
		names = append(names, f.Name)
	}

	want := []string{"y2012", "y2016", "y2020", "u1", "weird", "u2"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", names, want)
	}
}

// TestYearOf tests year extraction from date strings.
func TestYearOf(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2019-05-04": "2019",
		"2021":       "2021",
		"":           YearUnknown,
		"19":         "19",
	}
	for input, want := range cases {
		if got := YearOf(input); got != want {
			t.Errorf("YearOf(%q) = %q, want %q", input, got, want)
		}
	}
}

// TestFindingSetTotalLeakCount tests leak count aggregation.
func TestFindingSetTotalLeakCount(t *testing.T) {
	t.Parallel()

	fs := NewFindingSet(
		Finding{Name: "a", LeakCount: 30},
		Finding{Name: "b", LeakCount: 7},
	)
	if got := fs.TotalLeakCount(); got != 37 {
		t.Errorf("TotalLeakCount() = %d, want 37", got)
	}

	var nilSet *FindingSet
	if nilSet.Len() != 0 || len(nilSet.Findings()) != 0 {
		t.Error("nil set should be empty")
	}
}

// TestFindingHasDataClass tests data class lookup.
func TestFindingHasDataClass(t *testing.T) {
	t.Parallel()

	f := Finding{Name: "x", DataLeaked: []string{DataClassPassword, "email"}}
	if !f.HasDataClass(DataClassPassword) {
		t.Error("expected password class")
	}
	if f.HasDataClass("Passwords") {
		t.Error("data class lookup is exact")
	}
}

// TestFindingSetMarshalJSON tests that a set encodes as an ordered array.
func TestFindingSetMarshalJSON(t *testing.T) {
	t.Parallel()

	fs := NewFindingSet(Finding{Name: "late", Year: "2020"}, Finding{Name: "early", Year: "2010"})
	data, err := json.Marshal(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(data), `[{"name":"early"`) {
		t.Errorf("unexpected JSON: %s", data)
	}
}
