// Package report renders comparisons and corpus runs.
//
// Three formats share the Writer interface:
//   - SimpleWriter: the plain text form printed by default, whose comparison
//     output is line-for-line what existing scripts parse
//   - JSONWriter: the model types as JSON
//   - MarkdownWriter: tables, the diff in a fenced block and, for corpus
//     runs, a verdict pie chart
package report
