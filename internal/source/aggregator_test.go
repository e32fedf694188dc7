package source

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/leakscan/internal/model"
)

// fakeSource returns fixed findings after an optional delay.
type fakeSource struct {
	name     string
	kinds    kindSet
	findings []model.Finding
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeSource) Name() string                  { return f.name }
func (f *fakeSource) Supports(kind model.Kind) bool { return f.kinds.Supports(kind) }

func (f *fakeSource) Fetch(ctx context.Context, _ model.Target) []model.Finding {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.delay):
		}
	}
	return f.findings
}

func TestAggregatorLookup(t *testing.T) {
	t.Parallel()

	t.Run("duplicate breach names collapse to the first registered source", func(t *testing.T) {
		t.Parallel()

		first := &fakeSource{
			name:     "first",
			kinds:    emailOrPhone,
			delay:    30 * time.Millisecond,
			findings: []model.Finding{{Name: "BreachA", Year: "2019", SourceType: "first"}},
		}
		second := &fakeSource{
			name:     "second",
			kinds:    emailOrPhone,
			findings: []model.Finding{{Name: "BreachA", Year: "2012", SourceType: "second"}},
		}

		agg := NewAggregator([]Source{first, second})
		got := agg.Lookup(context.Background(), emailTarget()).Findings()

		if len(got) != 1 {
			t.Fatalf("expected 1 finding, got %+v", got)
		}
		if got[0].SourceType != "first" || got[0].Year != "2019" {
			t.Errorf("expected the first registered source to win, got %+v", got[0])
		}
	})

	t.Run("sources are queried concurrently", func(t *testing.T) {
		t.Parallel()

		a := &fakeSource{name: "a", kinds: emailOrPhone, delay: 150 * time.Millisecond, findings: []model.Finding{
			{Name: "BreachA", Year: "2015"},
		}}
		b := &fakeSource{name: "b", kinds: emailOrPhone, delay: 150 * time.Millisecond, findings: []model.Finding{
			{Name: "BreachB", Year: "2018"},
		}}

		start := time.Now()
		got := NewAggregator([]Source{a, b}).Lookup(context.Background(), emailTarget()).Findings()
		elapsed := time.Since(start)

		if elapsed >= 280*time.Millisecond {
			t.Errorf("expected concurrent lookups, took %v", elapsed)
		}
		if len(got) != 2 || got[0].Name != "BreachA" || got[1].Name != "BreachB" {
			t.Errorf("expected both findings, got %+v", got)
		}
	})

	t.Run("findings are ordered by year", func(t *testing.T) {
		t.Parallel()

		a := &fakeSource{name: "a", kinds: emailOrPhone, findings: []model.Finding{
			{Name: "Late", Year: "2021"},
			{Name: "Undated", Year: model.YearUnknown},
		}}
		b := &fakeSource{name: "b", kinds: emailOrPhone, findings: []model.Finding{
			{Name: "Early", Year: "2008"},
		}}

		got := NewAggregator([]Source{a, b}).Lookup(context.Background(), emailTarget()).Findings()
		if len(got) != 3 || got[0].Name != "Early" || got[1].Name != "Late" || got[2].Name != "Undated" {
			t.Errorf("unexpected order: %+v", got)
		}
	})

	t.Run("slow source is cut off by its deadline", func(t *testing.T) {
		t.Parallel()

		slow := &fakeSource{name: "slow", kinds: emailOrPhone, delay: 5 * time.Second,
			findings: []model.Finding{{Name: "Never"}}}
		fast := &fakeSource{name: "fast", kinds: emailOrPhone,
			findings: []model.Finding{{Name: "Fast", Year: "2015"}}}

		agg := NewAggregator([]Source{slow, fast}, WithSourceTimeout(50*time.Millisecond))

		start := time.Now()
		got := agg.Lookup(context.Background(), emailTarget())
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("lookup took %v, expected the deadline to apply", elapsed)
		}
		if got.Len() != 1 || !got.Contains("Fast") {
			t.Errorf("unexpected findings: %+v", got.Findings())
		}
	})

	t.Run("per-source timeout override", func(t *testing.T) {
		t.Parallel()

		slowish := &fakeSource{name: "slowish", kinds: emailOrPhone, delay: 100 * time.Millisecond,
			findings: []model.Finding{{Name: "Slowish"}}}

		agg := NewAggregator([]Source{slowish},
			WithSourceTimeout(10*time.Millisecond),
			WithSourceTimeouts(map[string]time.Duration{"slowish": 5 * time.Second}),
		)
		if got := agg.Lookup(context.Background(), emailTarget()); !got.Contains("Slowish") {
			t.Errorf("expected override to allow slow source, got %+v", got.Findings())
		}
	})

	t.Run("unsupported sources are not queried", func(t *testing.T) {
		t.Parallel()

		emailSrc := &fakeSource{name: "email", kinds: emailOnly, findings: []model.Finding{{Name: "E"}}}
		phoneSrc := &fakeSource{name: "phone", kinds: emailOrPhone, findings: []model.Finding{{Name: "P"}}}

		phone := model.NewTarget("+14155552671", model.KindUnknown)
		got := NewAggregator([]Source{emailSrc, phoneSrc}).Lookup(context.Background(), phone)

		if emailSrc.calls.Load() != 0 {
			t.Error("email-only source was queried for a phone target")
		}
		if got.Len() != 1 || !got.Contains("P") {
			t.Errorf("unexpected findings: %+v", got.Findings())
		}
	})

	t.Run("unknown target yields empty set", func(t *testing.T) {
		t.Parallel()

		src := &fakeSource{name: "any", kinds: emailOrPhone}
		got := NewAggregator([]Source{src}).Lookup(context.Background(), model.NewTarget("", model.KindUnknown))
		if got.Len() != 0 || src.calls.Load() != 0 {
			t.Errorf("expected no lookups, got %+v", got.Findings())
		}
	})

	t.Run("all sources failing yields empty set", func(t *testing.T) {
		t.Parallel()

		a := &fakeSource{name: "a", kinds: emailOrPhone}
		b := &fakeSource{name: "b", kinds: emailOrPhone}
		if got := NewAggregator([]Source{a, b}).Lookup(context.Background(), emailTarget()); got.Len() != 0 {
			t.Errorf("expected empty set, got %+v", got.Findings())
		}
	})
}

func TestNewAggregatorSkipsNil(t *testing.T) {
	t.Parallel()

	agg := NewAggregator([]Source{nil, &fakeSource{name: "x"}})
	if len(agg.Sources()) != 1 {
		t.Errorf("expected nil sources to be dropped, got %d", len(agg.Sources()))
	}
}
