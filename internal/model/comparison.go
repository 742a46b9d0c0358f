package model

import (
	"strings"

	"github.com/ArchiveTeam/dupespotter/internal/compare"
)

// Verdict is the outcome of comparing two cleaned pages.
type Verdict string

const (
	// VerdictDuplicate means the cleaned pages produced an empty diff.
	VerdictDuplicate Verdict = "duplicate"
	// VerdictDistinct means at least one hunk remained.
	VerdictDistinct Verdict = "distinct"
)

// PageSummary describes one side of a comparison.
type PageSummary struct {
	URL          string `json:"url"`
	Key          string `json:"key"`
	RawBytes     int    `json:"raw_bytes"`
	CleanedBytes int    `json:"cleaned_bytes"`
	// Fingerprint identifies the cleaned body.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Summarize builds a PageSummary for p.
func Summarize(p *Page, fingerprint string) PageSummary {
	return PageSummary{
		URL:          p.URL,
		Key:          p.Key,
		RawBytes:     len(p.Raw),
		CleanedBytes: len(p.Cleaned),
		Fingerprint:  fingerprint,
	}
}

// Comparison is the result of diffing two cleaned pages.
type Comparison struct {
	First   PageSummary `json:"first"`
	Second  PageSummary `json:"second"`
	Diff    []string    `json:"diff"`
	Hunks   int         `json:"hunks"`
	Verdict Verdict     `json:"verdict"`
}

// NewComparison records diff lines for two pages and derives the verdict
// from the number of hunk headers.
func NewComparison(first, second PageSummary, diff []string) *Comparison {
	if diff == nil {
		diff = []string{}
	}
	hunks := compare.CountHunks(diff)
	verdict := VerdictDistinct
	if hunks == 0 {
		verdict = VerdictDuplicate
	}
	return &Comparison{First: first, Second: second, Diff: diff, Hunks: hunks, Verdict: verdict}
}

// IsDuplicate reports whether the pages compared equal after cleaning.
func (c *Comparison) IsDuplicate() bool {
	return c.Verdict == VerdictDuplicate
}

// DiffText joins the diff lines.
func (c *Comparison) DiffText() string {
	return strings.Join(c.Diff, "")
}
