package corpus

import (
	"context"
	"log/slog"
	"time"

	"github.com/ArchiveTeam/dupespotter/internal/model"
	"github.com/ArchiveTeam/dupespotter/internal/noise"
	"github.com/ArchiveTeam/dupespotter/internal/pipeline"
)

// Runner normalizes and diffs every pair of a corpus.
//
// Design decision: a corpus holds bodies captured earlier, so the runner
// builds a pipeline without the fetch step. Pairs never touch the cache
// or the network, and a run is reproducible offline.
type Runner struct {
	normalizer  *noise.Normalizer
	concurrency int
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets how many pairs run at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner returns a Runner using n.
func NewRunner(n *noise.Normalizer, opts ...Option) *Runner {
	r := &Runner{
		normalizer:  n,
		concurrency: pipeline.DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads dir and checks every pair. Results are in pair-name order.
// The error is non-nil only when the corpus cannot be read or ctx ends.
func (r *Runner) Run(ctx context.Context, dir string) (*model.CorpusSummary, error) {
	start := time.Now()

	jobs, err := Load(dir)
	if err != nil {
		return nil, err
	}

	// Malformed pairs already carry their error; only the rest are run.
	runnable := make([]*model.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Error != "" {
			r.logger.Warn("skipping pair", "pair", job.Name, "error", job.Error)
			continue
		}
		runnable = append(runnable, job)
	}

	bp := pipeline.NewBatchProcessor(r.newPipeline,
		pipeline.WithConcurrency(r.concurrency),
		pipeline.WithBatchLogger(r.logger),
	)
	if _, err := bp.ProcessBatch(ctx, runnable); err != nil {
		return nil, err
	}

	// jobs still holds every pair in name order, including skipped ones.
	results := make([]model.CorpusResult, len(jobs))
	for i, job := range jobs {
		results[i] = model.ResultFromJob(job)
	}
	return model.NewCorpusSummary(dir, results, time.Since(start)), nil
}

// newPipeline is the factory handed to the batch processor; each pair gets
// its own pipeline instance.
func (r *Runner) newPipeline() *pipeline.Pipeline {
	p := pipeline.New(pipeline.WithLogger(r.logger))
	p.AddSteps(pipeline.NewNormalizeStep(r.normalizer), pipeline.NewDiffStep())
	return p
}
