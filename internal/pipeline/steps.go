package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/leakscan/internal/model"
	"github.com/nao1215/leakscan/internal/password"
	"github.com/nao1215/leakscan/internal/risk"
	"github.com/nao1215/leakscan/internal/source"
)

// Step names.
const (
	StepLookup           = "lookup"
	StepPasswordStrength = "password_strength"
	StepRiskScore        = "risk_score"
	StepExposureTimeline = "exposure_timeline"
)

// Lookuper returns the merged findings for an email or phone target.
// source.Aggregator implements it.
type Lookuper interface {
	Lookup(ctx context.Context, target model.Target) *model.FindingSet
}

// FirstSeenEstimator estimates when an email address was first exposed.
// timeline.Estimator implements it.
type FirstSeenEstimator interface {
	EstimateFirstSeen(ctx context.Context, email, domain string) string
}

// LookupStep fills report.Breaches from the breach sources.
//
// Password targets only ever reach the password source, and its findings
// are taken as they are. Email and phone targets go through the aggregator.
type LookupStep struct {
	lookup         Lookuper
	passwordSource source.Source
	logger         *slog.Logger
}

// NewLookupStep creates the lookup step. Either dependency may be nil, in
// which case targets of the corresponding kind get no findings.
func NewLookupStep(lookup Lookuper, passwordSource source.Source, logger *slog.Logger) *LookupStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupStep{
		lookup:         lookup,
		passwordSource: passwordSource,
		logger:         logger,
	}
}

// Name returns the step name.
func (s *LookupStep) Name() string {
	return StepLookup
}

// Do executes the lookup.
func (s *LookupStep) Do(ctx context.Context, report *model.Report) error {
	target := report.Target

	switch target.Kind() {
	case model.KindPassword:
		set := &model.FindingSet{}
		if s.passwordSource != nil {
			for _, f := range s.passwordSource.Fetch(ctx, target) {
				set.Add(f)
			}
		}
		report.Breaches = set
	case model.KindEmail, model.KindPhone:
		if s.lookup != nil {
			report.Breaches = s.lookup.Lookup(ctx, target)
		}
	default:
		s.logger.Debug("skipping lookup for unclassified target")
	}

	if report.Breaches == nil {
		report.Breaches = &model.FindingSet{}
	}

	s.logger.Debug("lookup finished",
		"target", target.Redacted(),
		"findings", report.Breaches.Len(),
	)
	return nil
}

// PasswordStrengthStep computes password metrics from the target and the
// total leak count of its findings.
type PasswordStrengthStep struct{}

// NewPasswordStrengthStep creates the password strength step.
func NewPasswordStrengthStep() *PasswordStrengthStep {
	return &PasswordStrengthStep{}
}

// Name returns the step name.
func (s *PasswordStrengthStep) Name() string {
	return StepPasswordStrength
}

// Do executes the password analysis.
func (s *PasswordStrengthStep) Do(_ context.Context, report *model.Report) error {
	metrics := password.Analyze(report.Target.Value(), report.Breaches.TotalLeakCount())
	report.Password = &metrics
	return nil
}

// RiskScoreStep scores the findings of a non-password target.
type RiskScoreStep struct{}

// NewRiskScoreStep creates the risk score step.
func NewRiskScoreStep() *RiskScoreStep {
	return &RiskScoreStep{}
}

// Name returns the step name.
func (s *RiskScoreStep) Name() string {
	return StepRiskScore
}

// Do executes the risk scoring.
func (s *RiskScoreStep) Do(_ context.Context, report *model.Report) error {
	result := risk.Assess(report.Breaches.Findings(), "")
	report.Risk = &result
	return nil
}

// ExposureTimelineStep adds a first-seen estimate to the risk result of an
// email target.
type ExposureTimelineStep struct {
	estimator FirstSeenEstimator
}

// NewExposureTimelineStep creates the timeline step.
func NewExposureTimelineStep(estimator FirstSeenEstimator) *ExposureTimelineStep {
	return &ExposureTimelineStep{estimator: estimator}
}

// Name returns the step name.
func (s *ExposureTimelineStep) Name() string {
	return StepExposureTimeline
}

// Do executes the estimate.
func (s *ExposureTimelineStep) Do(ctx context.Context, report *model.Report) error {
	if report.Risk == nil {
		result := risk.Assess(report.Breaches.Findings(), "")
		report.Risk = &result
	}

	domain, _ := report.Target.Domain()
	report.Risk.FirstSeen = s.estimator.EstimateFirstSeen(ctx, report.Target.Value(), domain)
	return nil
}
