package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/ArchiveTeam/dupespotter/internal/model"
)

// syntaxDiff fences unified diffs.
const syntaxDiff markdown.SyntaxHighlight = "diff"

// MarkdownWriter writes GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteComparison writes a summary table and, for distinct pages, the diff.
func (w *MarkdownWriter) WriteComparison(c *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Duplicate Check")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "First", "Second"},
		Rows: [][]string{
			{"URL", code(c.First.URL), code(c.Second.URL)},
			{"Cache Key", code(c.First.Key), code(c.Second.Key)},
			{"Raw Bytes", strconv.Itoa(c.First.RawBytes), strconv.Itoa(c.Second.RawBytes)},
			{"Cleaned Bytes", strconv.Itoa(c.First.CleanedBytes), strconv.Itoa(c.Second.CleanedBytes)},
			{"Fingerprint", code(shortFingerprint(c.First.Fingerprint)), code(shortFingerprint(c.Second.Fingerprint))},
		},
	})
	md.PlainText("")

	if c.IsDuplicate() {
		md.Tip("**" + verdictLabel(c.Verdict) + "**: the pages are identical after normalization.")
		md.PlainText("")
	} else {
		md.Warningf("**%s**: %d hunk(s) differ after normalization.", verdictLabel(c.Verdict), c.Hunks)
		md.PlainText("")
		md.H2("Diff")
		md.PlainText("")
		md.CodeBlocks(syntaxDiff, c.DiffText())
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteCorpus writes run totals, a verdict chart, a per-pair table and the
// diffs of failing pairs.
func (w *MarkdownWriter) WriteCorpus(s *model.CorpusSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Corpus Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Directory", code(s.Dir)},
			{"Pairs", strconv.Itoa(s.Total)},
			{"Passed", strconv.Itoa(s.Passed)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Errored", strconv.Itoa(s.Errored)},
			{"Duration", s.Duration.String()},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		w.writePieChart(md, s)
	}

	switch {
	case s.Total == 0:
		md.Note("The corpus holds no pairs.")
	case s.OK():
		md.Tip("Every pair normalized to identical bodies.")
	default:
		md.Cautionf("%d of %d pair(s) did not normalize to identical bodies.", s.Total-s.Passed, s.Total)
	}
	md.PlainText("")

	if s.Total > 0 {
		w.writePairs(md, s)
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writePieChart renders a mermaid pie chart of the pair outcomes. Empty
// slices are left out; mermaid draws them as zero-width labels.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.CorpusSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pair Outcomes"),
		piechart.WithShowData(true),
	)
	if s.Passed > 0 {
		chart.LabelAndIntValue("Passed", uint64(s.Passed))
	}
	if s.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.Failed))
	}
	if s.Errored > 0 {
		chart.LabelAndIntValue("Errored", uint64(s.Errored))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePairs writes one table row per pair, then the error of each errored
// pair in a collapsed block and the diff of each failing pair.
func (w *MarkdownWriter) writePairs(md *markdown.Markdown, s *model.CorpusSummary) {
	md.H2("Pairs")
	md.PlainText("")

	rows := make([][]string, len(s.Results))
	for i, r := range s.Results {
		hunks := "-"
		if r.Comparison != nil {
			hunks = strconv.Itoa(r.Comparison.Hunks)
		}
		rows[i] = []string{r.Name, resultLabel(r), hunks}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Pair", "Result", "Hunks"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range s.Results {
		switch {
		case r.Error != "":
			md.Details(r.Name, r.Error)
			md.PlainText("")
		case r.Comparison != nil && !r.Comparison.IsDuplicate():
			md.H3(r.Name)
			md.PlainText("")
			md.CodeBlocks(syntaxDiff, r.Comparison.DiffText())
			md.PlainText("")
		}
	}
}

// writeFooter closes the report with a rule and the generator line.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [dupespotter](https://github.com/ArchiveTeam/dupespotter)*")
}

// code wraps s in backticks, or returns "-" for an empty cell.
func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

// shortFingerprint keeps the first 16 hex digits.
func shortFingerprint(fp string) string {
	if len(fp) <= 16 {
		return fp
	}
	return fp[:16]
}
