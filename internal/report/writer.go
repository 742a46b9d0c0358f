package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ArchiveTeam/dupespotter/internal/model"
)

// Writer renders results to a destination.
type Writer interface {
	// WriteComparison renders one two-page comparison.
	WriteComparison(c *model.Comparison) (int, error)

	// WriteCorpus renders the results of a corpus run.
	WriteCorpus(s *model.CorpusSummary) (int, error)
}

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// New returns the writer for format. Unknown formats fall back to text.
func New(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// verdictLabel returns "Duplicate" or "Distinct".
func verdictLabel(v model.Verdict) string {
	return titleCaser.String(string(v))
}

// resultLabel names a corpus result's outcome.
func resultLabel(r model.CorpusResult) string {
	switch {
	case r.Error != "":
		return "Error"
	case r.Comparison == nil:
		return "Skipped"
	default:
		return verdictLabel(r.Comparison.Verdict)
	}
}
