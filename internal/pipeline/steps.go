package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ArchiveTeam/dupespotter/internal/compare"
	"github.com/ArchiveTeam/dupespotter/internal/fetch"
	"github.com/ArchiveTeam/dupespotter/internal/model"
	"github.com/ArchiveTeam/dupespotter/internal/noise"
)

// ErrNotReady is returned when a step runs before its inputs exist.
var ErrNotReady = errors.New("job not ready")

// FetchStep loads the raw body of each page that has none yet.
type FetchStep struct {
	source fetch.Source
	logger *slog.Logger
}

// NewFetchStep returns a FetchStep reading from source.
func NewFetchStep(source fetch.Source, logger *slog.Logger) *FetchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchStep{source: source, logger: logger}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fetches the pages in order; the first failure stops the step.
func (s *FetchStep) Do(ctx context.Context, job *model.Job) error {
	for _, page := range job.Pages() {
		if page.IsFetched() {
			continue
		}
		body, err := s.source.Get(ctx, page.URL)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", page.URL, err)
		}
		if body == nil {
			body = []byte{}
		}
		page.Raw = body
		s.logger.Debug("page loaded", "url", page.URL, "key", page.Key, "bytes", len(body))
	}
	return nil
}

// NormalizeStep cleans each page's raw body.
type NormalizeStep struct {
	normalizer *noise.Normalizer
}

// NewNormalizeStep returns a NormalizeStep using n.
func NewNormalizeStep(n *noise.Normalizer) *NormalizeStep {
	return &NormalizeStep{normalizer: n}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do sets Cleaned on both pages.
func (s *NormalizeStep) Do(_ context.Context, job *model.Job) error {
	for _, page := range job.Pages() {
		if !page.IsFetched() {
			return fmt.Errorf("%w: %s has no body", ErrNotReady, page.URL)
		}
		cleaned, err := s.normalizer.Normalize(page.Raw, page.URL)
		if err != nil {
			return fmt.Errorf("failed to normalize %s: %w", page.URL, err)
		}
		page.Cleaned = cleaned
	}
	return nil
}

// DiffStep diffs the cleaned bodies and records the Comparison.
type DiffStep struct{}

// NewDiffStep returns a DiffStep.
func NewDiffStep() *DiffStep {
	return &DiffStep{}
}

// Name returns the step name.
func (s *DiffStep) Name() string {
	return "diff"
}

// Do labels the diff with the page URLs.
func (s *DiffStep) Do(_ context.Context, job *model.Job) error {
	first, second := job.First, job.Second
	if !first.IsNormalized() || !second.IsNormalized() {
		return fmt.Errorf("%w: pages not normalized", ErrNotReady)
	}
	lines := slices.Collect(compare.Diff(first.Cleaned, second.Cleaned, first.URL, second.URL))
	job.Comparison = model.NewComparison(
		model.Summarize(first, compare.Fingerprint(first.Cleaned)),
		model.Summarize(second, compare.Fingerprint(second.Cleaned)),
		lines,
	)
	return nil
}

// NewComparePipeline returns the fetch, normalize, diff sequence.
func NewComparePipeline(source fetch.Source, n *noise.Normalizer, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(NewFetchStep(source, logger), NewNormalizeStep(n), NewDiffStep())
	return p
}
