package compare

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Diff decodes two cleaned bodies and yields their unified diff line by
// line, labelled with label1 and label2. Every yielded line ends in "\n".
// Identical bodies yield nothing.
func Diff(cleaned1, cleaned2 []byte, label1, label2 string) iter.Seq[string] {
	return UnifiedLines(SplitLines(Decode(cleaned1)), SplitLines(Decode(cleaned2)), label1, label2, DefaultContext)
}

// UnifiedLines yields the unified diff of two line slices, which keep
// their terminators. Lines without a "\n" get one appended on output.
func UnifiedLines(a, b []string, label1, label2 string, context int) iter.Seq[string] {
	return func(yield func(string) bool) {
		groups := difflib.NewMatcher(a, b).GetGroupedOpCodes(context)
		started := false
		for _, group := range groups {
			if unchanged(group) {
				continue
			}
			if !started {
				started = true
				if !yield(terminate("--- "+label1)) || !yield(terminate("+++ "+label2)) {
					return
				}
			}

			first, last := group[0], group[len(group)-1]
			header := fmt.Sprintf("@@ -%s +%s @@\n", formatRange(first.I1, last.I2), formatRange(first.J1, last.J2))
			if !yield(header) {
				return
			}
			for _, op := range group {
				if op.Tag == 'e' {
					if !emit(yield, " ", a[op.I1:op.I2]) {
						return
					}
					continue
				}
				if op.Tag == 'r' || op.Tag == 'd' {
					if !emit(yield, "-", a[op.I1:op.I2]) {
						return
					}
				}
				if op.Tag == 'r' || op.Tag == 'i' {
					if !emit(yield, "+", b[op.J1:op.J2]) {
						return
					}
				}
			}
		}
	}
}

// CountHunks returns the number of hunk headers in diff lines.
func CountHunks(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "@@ ") {
			n++
		}
	}
	return n
}

// emit yields each line with prefix, stopping when the consumer does.
func emit(yield func(string) bool, prefix string, lines []string) bool {
	for _, l := range lines {
		if !yield(terminate(prefix + l)) {
			return false
		}
	}
	return true
}

// unchanged reports whether a group holds only equal opcodes. difflib
// returns one such group for identical inputs.
func unchanged(group []difflib.OpCode) bool {
	for _, op := range group {
		if op.Tag != 'e' {
			return false
		}
	}
	return true
}

// terminate appends a newline to lines that contain none.
func terminate(line string) string {
	if strings.Contains(line, "\n") {
		return line
	}
	return line + "\n"
}

// formatRange renders a hunk range: "start,length", just "start" for a
// single line, and the line before the hunk for an empty range.
func formatRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	switch length {
	case 1:
		return fmt.Sprintf("%d", beginning)
	case 0:
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}
