package model

import (
	"encoding/json"
	"time"
)

// Report is the structured result of checking one target.
// Exactly one of Password and Risk is set once the check pipeline has run:
// Password for password targets, Risk for every other kind.
type Report struct {
	// Target is the classified, normalized identifier.
	Target Target

	// Breaches holds the merged findings.
	Breaches *FindingSet

	// Password holds strength metrics for password targets.
	Password *PasswordMetrics

	// Risk holds account risk metrics for email and phone targets.
	Risk *RiskResult

	// CheckedAt is when the check started.
	CheckedAt time.Time

	// PerformedSteps lists the pipeline steps that completed, in order.
	PerformedSteps []string

	// Cancelled is set when the check was interrupted before every step ran.
	// The report then holds whatever the completed steps produced.
	Cancelled bool
}

// NewReport creates an empty report for target.
func NewReport(target Target) *Report {
	return &Report{
		Target:    target,
		Breaches:  &FindingSet{},
		CheckedAt: time.Now(),
	}
}

// Type returns the kind of the checked target.
func (r *Report) Type() Kind {
	return r.Target.Kind()
}

// Exposed reports whether any finding was recorded.
func (r *Report) Exposed() bool {
	return r.Breaches.Len() > 0
}

// Level summarizes the report as a single risk level.
func (r *Report) Level() RiskLevel {
	switch {
	case r.Password != nil:
		return r.Password.Level()
	case r.Risk != nil:
		return r.Risk.Level
	default:
		return RiskLow
	}
}

// Stats returns whichever metrics the report carries, or nil.
func (r *Report) Stats() any {
	switch {
	case r.Password != nil:
		return r.Password
	case r.Risk != nil:
		return r.Risk
	default:
		return nil
	}
}

// ForDisplay returns the shallow copy report writers render. Password
// targets are masked; emails and phone numbers are kept in full so that
// each report can be attributed to its target.
func (r *Report) ForDisplay() *Report {
	if r.Target.kind == KindPassword {
		return r.Redacted()
	}
	cp := *r
	return &cp
}

// Redacted returns a shallow copy whose target is replaced by its redacted
// form, as used in logs.
func (r *Report) Redacted() *Report {
	cp := *r
	cp.Target = Target{value: r.Target.Redacted(), kind: r.Target.kind}
	return &cp
}

// reportJSON is the wire shape of a Report.
type reportJSON struct {
	Target    string      `json:"target"`
	Type      Kind        `json:"type"`
	Breaches  *FindingSet `json:"breaches"`
	Stats     any         `json:"stats"`
	CheckedAt time.Time   `json:"checked_at"`
}

// MarshalJSON encodes the report as {target, type, breaches, stats, checked_at}.
func (r *Report) MarshalJSON() ([]byte, error) {
	stats := r.Stats()
	if stats == nil {
		stats = struct{}{}
	}
	return json.Marshal(reportJSON{
		Target:    r.Target.Value(),
		Type:      r.Type(),
		Breaches:  r.Breaches,
		Stats:     stats,
		CheckedAt: r.CheckedAt,
	})
}
