package pipeline

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/nao1215/leakscan/internal/model"
)

// fakeLookup returns a fixed finding set.
type fakeLookup struct {
	findings []model.Finding
	calls    atomic.Int32
}

func (f *fakeLookup) Lookup(context.Context, model.Target) *model.FindingSet {
	f.calls.Add(1)
	return model.NewFindingSet(f.findings...)
}

// fakePasswordSource returns a fixed leak count for every password.
type fakePasswordSource struct {
	leaks int
	calls atomic.Int32
}

func (f *fakePasswordSource) Name() string { return "fake-passwords" }

func (f *fakePasswordSource) Supports(kind model.Kind) bool { return kind == model.KindPassword }

func (f *fakePasswordSource) Fetch(context.Context, model.Target) []model.Finding {
	f.calls.Add(1)
	if f.leaks == 0 {
		return nil
	}
	return []model.Finding{{Name: "HIBP Pwned Passwords", Year: model.YearUnknown, LeakCount: f.leaks}}
}

// fakeEstimator records the arguments it was called with.
type fakeEstimator struct {
	result string
	email  string
	domain string
}

func (f *fakeEstimator) EstimateFirstSeen(_ context.Context, email, domain string) string {
	f.email, f.domain = email, domain
	return f.result
}

func TestCheckerPipelineFor(t *testing.T) {
	t.Parallel()

	c := NewChecker(&fakeLookup{}, WithEstimator(&fakeEstimator{}))

	tests := []struct {
		kind model.Kind
		want []string
	}{
		{model.KindPassword, []string{StepLookup, StepPasswordStrength}},
		{model.KindEmail, []string{StepLookup, StepRiskScore, StepExposureTimeline}},
		{model.KindPhone, []string{StepLookup, StepRiskScore}},
		{model.KindUnknown, []string{StepLookup, StepRiskScore}},
	}
	for _, tt := range tests {
		if got := c.PipelineFor(tt.kind).StepNames(); !slices.Equal(got, tt.want) {
			t.Errorf("PipelineFor(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}

	noEstimator := NewChecker(&fakeLookup{})
	if got := noEstimator.PipelineFor(model.KindEmail).StepNames(); slices.Contains(got, StepExposureTimeline) {
		t.Errorf("timeline step should be skipped without estimator: %v", got)
	}
}

func TestCheckerCheck(t *testing.T) {
	t.Parallel()

	t.Run("email target", func(t *testing.T) {
		t.Parallel()

		lookup := &fakeLookup{findings: []model.Finding{
			{Name: "BreachB", Year: "2016", DataLeaked: []string{model.DataClassPassword}},
			{Name: "BreachA", Year: "2012", DataLeaked: []string{model.DataClassUnknown}},
		}}
		est := &fakeEstimator{result: "2001-03"}
		pw := &fakePasswordSource{leaks: 5}

		report := NewChecker(lookup, WithEstimator(est), WithPasswordSource(pw)).
			Check(context.Background(), "User@Example.com", model.KindUnknown)

		if report.Type() != model.KindEmail || report.Target.Value() != "user@example.com" {
			t.Errorf("unexpected target: %s %q", report.Type(), report.Target.Value())
		}
		if report.Risk == nil || report.Password != nil {
			t.Fatalf("expected risk stats only, got %+v / %+v", report.Risk, report.Password)
		}
		if report.Risk.RiskScore != 50 || report.Risk.Level != model.RiskHigh {
			t.Errorf("unexpected risk: %+v", report.Risk)
		}
		if report.Risk.FirstSeen != "2001-03" {
			t.Errorf("FirstSeen = %q", report.Risk.FirstSeen)
		}
		if est.email != "user@example.com" || est.domain != "example.com" {
			t.Errorf("estimator called with (%q, %q)", est.email, est.domain)
		}
		if pw.calls.Load() != 0 {
			t.Error("password source must not be queried for email targets")
		}
		if got := report.Breaches.Findings(); got[0].Name != "BreachA" {
			t.Errorf("expected year-ordered findings, got %+v", got)
		}
	})

	t.Run("phone target has no first seen", func(t *testing.T) {
		t.Parallel()

		est := &fakeEstimator{result: "2001-03"}
		report := NewChecker(&fakeLookup{}, WithEstimator(est)).
			Check(context.Background(), "+14155552671", model.KindUnknown)

		if report.Type() != model.KindPhone {
			t.Fatalf("Type() = %s", report.Type())
		}
		if report.Risk == nil || report.Risk.RiskScore != 0 || report.Risk.FirstSeen != "" {
			t.Errorf("unexpected risk: %+v", report.Risk)
		}
		if est.email != "" {
			t.Error("estimator must not run for phone targets")
		}
	})

	t.Run("leaked password", func(t *testing.T) {
		t.Parallel()

		lookup := &fakeLookup{}
		pw := &fakePasswordSource{leaks: 37}

		report := NewChecker(lookup, WithPasswordSource(pw)).
			Check(context.Background(), "password", model.KindUnknown)

		if report.Type() != model.KindPassword {
			t.Fatalf("Type() = %s", report.Type())
		}
		if lookup.calls.Load() != 0 {
			t.Error("aggregator must not be queried for password targets")
		}
		if report.Password == nil || report.Risk != nil {
			t.Fatalf("expected password stats only")
		}
		if report.Password.Score != 0 || report.Password.LeakCount != 37 {
			t.Errorf("unexpected metrics: %+v", report.Password)
		}
		if report.Breaches.Len() != 1 {
			t.Errorf("expected the password finding, got %d", report.Breaches.Len())
		}
	})

	t.Run("forced password type", func(t *testing.T) {
		t.Parallel()

		report := NewChecker(&fakeLookup{}, WithPasswordSource(&fakePasswordSource{})).
			Check(context.Background(), "user@example.com", model.KindPassword)

		if report.Type() != model.KindPassword || report.Password == nil {
			t.Errorf("expected forced password analysis, got %s", report.Type())
		}
		if report.Password.LeakCount != 0 || report.Password.Score == 0 {
			t.Errorf("unexpected metrics: %+v", report.Password)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()

		lookup := &fakeLookup{}
		report := NewChecker(lookup).Check(context.Background(), "", model.KindUnknown)

		if report.Type() != model.KindUnknown || report.Breaches.Len() != 0 {
			t.Errorf("unexpected report: %+v", report)
		}
		if lookup.calls.Load() != 0 {
			t.Error("no source should be queried for an unknown target")
		}
	})

	t.Run("cancelled before start", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := NewChecker(&fakeLookup{}).Check(ctx, "user@example.com", model.KindUnknown)
		if !report.Cancelled || report.Risk != nil {
			t.Errorf("expected cancelled empty report, got %+v", report)
		}
	})
}
