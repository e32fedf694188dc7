package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/leakscan/internal/model"
)

// DefaultConcurrency is the number of targets checked at once in batch mode.
const DefaultConcurrency = 4

// BatchProcessor checks many targets concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchProcessor struct {
	// checker runs each individual check.
	checker *Checker

	// concurrency is the maximum number of concurrent checks.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around checker.
func NewBatchProcessor(checker *Checker, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		checker:     checker,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch checks every target and returns one report per target in
// input order. Targets not started before ctx is cancelled get an empty
// report marked Cancelled, and the context error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string, forced model.Kind) ([]*model.Report, error) {
	results := make([]*model.Report, len(targets))

	// Each goroutine writes only its own index.
	err := bp.ProcessBatchWithCallback(ctx, targets, forced, func(report *model.Report, index int) {
		results[index] = report
	})

	for i, report := range results {
		if report == nil {
			report = model.NewReport(model.NewTarget(targets[i], forced))
			report.Cancelled = true
			results[i] = report
		}
	}

	return results, err
}

// ProcessBatchWithCallback checks every target and calls callback as each
// check completes, so reports arrive in completion order. The callback
// receives the index of the target in targets and is called from worker
// goroutines, so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	forced model.Kind,
	callback func(report *model.Report, index int),
) error {
	bp.logger.Info("starting batch check",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, raw := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			callback(bp.checker.Check(ctx, raw, forced), i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch check complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return err
}
