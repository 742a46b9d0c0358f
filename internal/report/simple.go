package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ArchiveTeam/dupespotter/internal/model"
)

// SimpleWriter writes plain text.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// WriteComparison writes the cache key of each URL, the cleaned body
// lengths and the unified diff. A duplicate pair ends after the lengths.
func (w *SimpleWriter) WriteComparison(c *model.Comparison) (int, error) {
	var sb strings.Builder
	for _, p := range []model.PageSummary{c.First, c.Second} {
		fmt.Fprintf(&sb, "%s == md5(%s)\n", p.Key, strconv.Quote(p.URL))
	}
	sb.WriteString("After processing,\n")
	for _, p := range []model.PageSummary{c.First, c.Second} {
		fmt.Fprintf(&sb, "len(body(%s)) == %d\n", strconv.Quote(p.URL), p.CleanedBytes)
	}
	for _, line := range c.Diff {
		sb.WriteString(line)
	}
	return io.WriteString(w.output, sb.String())
}

// WriteCorpus writes each pair name followed by its diff or error and a
// blank line, then the totals.
func (w *SimpleWriter) WriteCorpus(s *model.CorpusSummary) (int, error) {
	var sb strings.Builder
	for _, r := range s.Results {
		sb.WriteString(r.Name)
		sb.WriteString("\n")
		switch {
		case r.Error != "":
			fmt.Fprintf(&sb, "error: %s\n", r.Error)
		case r.Comparison != nil:
			for _, line := range r.Comparison.Diff {
				sb.WriteString(line)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "%d pairs: %d passed, %d failed, %d errored\n", s.Total, s.Passed, s.Failed, s.Errored)
	fmt.Fprintf(&sb, "Done in %f seconds\n", s.Duration.Seconds())
	return io.WriteString(w.output, sb.String())
}
