package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ArchiveTeam/dupespotter/internal/model"
)

// DefaultConcurrency is the number of jobs run at once.
const DefaultConcurrency = 4

// BatchProcessor runs many jobs concurrently.
type BatchProcessor struct {
	// pipelineFactory builds a fresh pipeline per job.
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the number of jobs run at once. Non-positive values
// keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every job and returns them in input order. A failed job
// keeps its error in Job.Error and does not stop the others; only
// cancellation is returned as an error.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []*model.Job) ([]*model.Job, error) {
	err := bp.ProcessBatchWithCallback(ctx, jobs, nil)
	return jobs, err
}

// ProcessBatchWithCallback runs every job and calls callback, if set, with
// each finished job and its index. callback runs on worker goroutines.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	jobs []*model.Job,
	callback func(job *model.Job, index int),
) error {
	bp.logger.Info("starting batch", "jobs", len(jobs), "concurrency", bp.concurrency)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				job.Error = ctx.Err().Error()
				return ctx.Err()
			default:
			}

			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("job failed", "job", job.Name, "error", err)
			}
			if callback != nil {
				callback(job, i)
			}
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete", "jobs", len(jobs), "elapsed", time.Since(start))
	return err
}
