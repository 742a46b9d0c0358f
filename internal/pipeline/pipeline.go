package pipeline

import (
	"context"
	"log/slog"

	"github.com/ArchiveTeam/dupespotter/internal/model"
)

// Step is one stage of a job.
type Step interface {
	// Do runs the step against job. A returned error stops the job unless
	// the pipeline continues on error.
	Do(ctx context.Context, job *model.Job) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after one fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
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

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against job. Cancellation is checked between
// steps. The error of a failed step is also recorded in job.Error.
func (p *Pipeline) Execute(ctx context.Context, job *model.Job) error {
	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("job canceled", "job", job.Name, "step", step.Name(), "reason", ctx.Err())
			job.Error = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "job", job.Name, "step", step.Name())
		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed", "job", job.Name, "step", step.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
				job.Error = err.Error()
			}
			if !p.continueOnError {
				return err
			}
			continue
		}
		job.StepsCompleted = append(job.StepsCompleted, step.Name())
	}
	return firstErr
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
