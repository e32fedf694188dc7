package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/leakscan/internal/model"
	"github.com/nao1215/leakscan/internal/source"
)

// Checker runs the check pipeline for single targets.
// It is safe for concurrent use; each Check builds a fresh pipeline and report.
type Checker struct {
	lookup         Lookuper
	passwordSource source.Source
	estimator      FirstSeenEstimator
	logger         *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithPasswordSource sets the source used for password targets.
func WithPasswordSource(src source.Source) CheckerOption {
	return func(c *Checker) {
		c.passwordSource = src
	}
}

// WithEstimator sets the first-seen estimator used for email targets.
// Without one the exposure timeline step is skipped.
func WithEstimator(estimator FirstSeenEstimator) CheckerOption {
	return func(c *Checker) {
		c.estimator = estimator
	}
}

// WithCheckerLogger sets the logger passed to pipelines and steps.
func WithCheckerLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker that looks email and phone targets up with lookup.
func NewChecker(lookup Lookuper, opts ...CheckerOption) *Checker {
	c := &Checker{lookup: lookup}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// PipelineFor builds the step sequence for a target kind:
// lookup, then password_strength for passwords, or risk_score followed by
// exposure_timeline (email only) for everything else.
func (c *Checker) PipelineFor(kind model.Kind) *Pipeline {
	p := New(WithLogger(c.logger), WithContinueOnError(true))
	p.AddStep(NewLookupStep(c.lookup, c.passwordSource, c.logger))

	if kind == model.KindPassword {
		p.AddStep(NewPasswordStrengthStep())
		return p
	}

	p.AddStep(NewRiskScoreStep())
	if kind == model.KindEmail && c.estimator != nil {
		p.AddStep(NewExposureTimelineStep(c.estimator))
	}
	return p
}

// Check classifies raw (honouring forced for email and password), runs the
// pipeline for its kind and returns the report. It never fails: upstream
// errors yield empty findings, and cancellation yields a partial report
// with Cancelled set.
func (c *Checker) Check(ctx context.Context, raw string, forced model.Kind) *model.Report {
	report := model.NewReport(model.NewTarget(raw, forced))

	start := time.Now()
	_ = c.PipelineFor(report.Type()).Execute(ctx, report) //nolint:errcheck // cancellation is recorded in the report

	c.logger.Info("check finished",
		"target", report.Target.Redacted(),
		"type", report.Type(),
		"findings", report.Breaches.Len(),
		"level", report.Level(),
		"elapsed", time.Since(start),
	)
	return report
}
