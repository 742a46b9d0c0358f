package compare

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts body to a string, substituting U+FFFD for bytes that are
// not valid UTF-8. It never fails.
func Decode(body []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return string(out)
}

// SplitLines splits s at line boundaries and keeps the terminators. The
// boundaries are \n, \r\n, \r, \v, \f, the ASCII file, group and record
// separators, NEL, and the Unicode line and paragraph separators.
func SplitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		end := i + size
		if isLineBoundary(r) {
			if r == '\r' && end < len(s) && s[end] == '\n' {
				end++
			}
			lines = append(lines, s[start:end])
			start = end
		}
		i = end
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// Fingerprint returns the SHA3-256 hex digest of body. Two cleaned bodies
// with the same fingerprint produce an empty diff.
func Fingerprint(body []byte) string {
	sum := sha3.Sum256(body)
	return hex.EncodeToString(sum[:])
}
