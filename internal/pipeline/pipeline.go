package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/leakscan/internal/model"
)

// Step is one stage of a check. Each step reads and extends the report
// built by the steps before it.
type Step interface {
	// Do runs the step. Upstream problems are expected to be absorbed by
	// the step itself; a returned error means the step could not run at all.
	Do(ctx context.Context, report *model.Report) error

	// Name is the stable step name recorded in Report.PerformedSteps.
	Name() string
}

// Pipeline runs steps in order over a single report.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. slog.Default() is used when unset.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after a step fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in order.
//
// The context is checked before each step. Once it is done the report is
// marked Cancelled and the context error is returned; results of the steps
// that already ran are kept. Only steps that succeeded are recorded in
// report.PerformedSteps.
func (p *Pipeline) Execute(ctx context.Context, report *model.Report) error {
	target := report.Target.Redacted()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("check cancelled", "step", step.Name(), "target", target, "reason", err)
			report.Cancelled = true
			return err
		}

		start := time.Now()
		err := step.Do(ctx, report)
		elapsed := time.Since(start)

		if err != nil {
			p.logger.Error("step failed", "step", step.Name(), "target", target, "elapsed", elapsed, "error", err)
			if p.continueOnError {
				continue
			}
			return err
		}

		p.logger.Debug("step finished", "step", step.Name(), "target", target, "elapsed", elapsed)
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
