package model

import "time"

// Job is one pair of pages moving through the pipeline.
type Job struct {
	// Name identifies the job in reports. Corpus jobs use the pair
	// directory name; ad hoc comparisons leave it empty.
	Name string `json:"name,omitempty"`

	First  *Page `json:"first"`
	Second *Page `json:"second"`

	// Comparison is set by the diff step.
	Comparison *Comparison `json:"comparison,omitempty"`

	// StepsCompleted lists the pipeline steps that finished, in order.
	StepsCompleted []string `json:"steps_completed,omitempty"`

	// Error is the message of the error that stopped the job, if any.
	Error string `json:"error,omitempty"`
}

// NewJob returns a job comparing firstURL and secondURL.
func NewJob(name, firstURL, secondURL string) *Job {
	return &Job{Name: name, First: NewPage(firstURL), Second: NewPage(secondURL)}
}

// Pages returns both pages in order.
func (j *Job) Pages() []*Page {
	return []*Page{j.First, j.Second}
}

// CorpusResult is the outcome of one corpus pair.
type CorpusResult struct {
	Name       string      `json:"name"`
	Comparison *Comparison `json:"comparison,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Passed reports whether the pair normalized to identical bodies.
func (r CorpusResult) Passed() bool {
	return r.Error == "" && r.Comparison != nil && r.Comparison.IsDuplicate()
}

// ResultFromJob converts a finished job.
func ResultFromJob(j *Job) CorpusResult {
	return CorpusResult{Name: j.Name, Comparison: j.Comparison, Error: j.Error}
}

// CorpusSummary aggregates a corpus run.
type CorpusSummary struct {
	Dir      string         `json:"dir"`
	Results  []CorpusResult `json:"results"`
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Errored  int            `json:"errored"`
	Duration time.Duration  `json:"duration_ns"`
}

// NewCorpusSummary counts outcomes. Results keep the order given.
func NewCorpusSummary(dir string, results []CorpusResult, duration time.Duration) *CorpusSummary {
	s := &CorpusSummary{Dir: dir, Results: results, Total: len(results), Duration: duration}
	for _, r := range results {
		switch {
		case r.Error != "":
			s.Errored++
		case r.Passed():
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}

// OK reports whether every pair passed.
func (s *CorpusSummary) OK() bool {
	return s.Passed == s.Total
}
