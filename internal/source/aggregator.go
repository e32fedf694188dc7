package source

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/leakscan/internal/model"
)

// DefaultSourceTimeout bounds each source lookup.
const DefaultSourceTimeout = 8 * time.Second

// Aggregator fans a target out to its registered sources and merges the results.
type Aggregator struct {
	// sources are queried concurrently but merged in registration order.
	sources []Source

	// timeout is the default per-source deadline.
	timeout time.Duration

	// timeouts overrides timeout for individual sources by name.
	timeouts map[string]time.Duration

	logger *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithSourceTimeout sets the default per-source deadline.
func WithSourceTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithSourceTimeouts overrides the deadline of individual sources by name.
func WithSourceTimeouts(timeouts map[string]time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		for name, d := range timeouts {
			if d > 0 {
				a.timeouts[name] = d
			}
		}
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an aggregator over sources. The order of sources is
// the merge order, so the earlier source wins when two report the same breach.
func NewAggregator(sources []Source, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		sources:  make([]Source, 0, len(sources)),
		timeout:  DefaultSourceTimeout,
		timeouts: make(map[string]time.Duration),
	}
	for _, src := range sources {
		if src != nil {
			a.sources = append(a.sources, src)
		}
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Sources returns the registered sources in merge order.
func (a *Aggregator) Sources() []Source {
	out := make([]Source, len(a.sources))
	copy(out, a.sources)
	return out
}

// timeoutFor returns the deadline applied to src.
func (a *Aggregator) timeoutFor(src Source) time.Duration {
	if d, ok := a.timeouts[src.Name()]; ok {
		return d
	}
	return a.timeout
}

// Lookup queries every source that supports the target's kind and returns
// the merged, deduplicated and year-ordered findings. Sources run
// concurrently, each under its own deadline, and Lookup waits for all of
// them. It never fails: a source that errors or times out contributes nothing.
func (a *Aggregator) Lookup(ctx context.Context, target model.Target) *model.FindingSet {
	applicable := make([]Source, 0, len(a.sources))
	for _, src := range a.sources {
		if src.Supports(target.Kind()) {
			applicable = append(applicable, src)
		}
	}

	if len(applicable) == 0 {
		a.logger.Debug("no applicable sources",
			"target", target.Redacted(),
			"kind", target.Kind(),
		)
		return model.NewFindingSet()
	}

	// One slot per source keeps the merge order independent of completion order.
	slots := make([][]model.Finding, len(applicable))

	var g errgroup.Group
	for i, src := range applicable {
		g.Go(func() error {
			srcCtx, cancel := context.WithTimeout(ctx, a.timeoutFor(src))
			defer cancel()

			start := time.Now()
			slots[i] = src.Fetch(srcCtx, target)

			a.logger.Debug("source finished",
				"source", src.Name(),
				"findings", len(slots[i]),
				"elapsed", time.Since(start),
			)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // sources never return errors

	var all []model.Finding
	for _, findings := range slots {
		all = append(all, findings...)
	}

	return model.NewFindingSet(all...)
}
