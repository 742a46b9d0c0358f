package noise

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Encoder is one of the forms in which a page may echo its own path.
type Encoder int

const (
	// EncoderRaw is the path as it appears in the URL.
	EncoderRaw Encoder = iota
	// EncoderEscapedSlash escapes each slash with a backslash, as in JSON.
	EncoderEscapedSlash
	// EncoderPercentPlus is form encoding: percent escapes, '+' for space.
	EncoderPercentPlus
	// EncoderPercentPlusLowerHex is EncoderPercentPlus with lower-case hex digits.
	EncoderPercentPlusLowerHex
	// EncoderFlattened drops every slash.
	EncoderFlattened
	// EncoderUnderscored replaces slashes with underscores (DokuWiki page ids).
	EncoderUnderscored
	// EncoderJSONUnicodeSlash is a quoted JSON string with \u002F slashes
	// (Drupal settings blobs).
	EncoderJSONUnicodeSlash
)

// PathEncoders lists the path encoders in the order they are applied.
var PathEncoders = []Encoder{
	EncoderRaw,
	EncoderEscapedSlash,
	EncoderPercentPlus,
	EncoderPercentPlusLowerHex,
	EncoderFlattened,
	EncoderUnderscored,
	EncoderJSONUnicodeSlash,
}

// String returns the encoder name.
func (e Encoder) String() string {
	switch e {
	case EncoderRaw:
		return "raw"
	case EncoderEscapedSlash:
		return "escaped-slash"
	case EncoderPercentPlus:
		return "percent-plus"
	case EncoderPercentPlusLowerHex:
		return "percent-plus-lower-hex"
	case EncoderFlattened:
		return "flattened"
	case EncoderUnderscored:
		return "underscored"
	case EncoderJSONUnicodeSlash:
		return "json-unicode-slash"
	default:
		return "unknown"
	}
}

// Encode renders path in the encoder's form.
func (e Encoder) Encode(path string) string {
	switch e {
	case EncoderRaw:
		return path
	case EncoderEscapedSlash:
		return strings.ReplaceAll(path, "/", `\/`)
	case EncoderPercentPlus:
		return url.QueryEscape(path)
	case EncoderPercentPlusLowerHex:
		return lowerEscapes(url.QueryEscape(path))
	case EncoderFlattened:
		return strings.ReplaceAll(path, "/", "")
	case EncoderUnderscored:
		return strings.ReplaceAll(path, "/", "_")
	case EncoderJSONUnicodeSlash:
		return `"` + strings.ReplaceAll(path, "/", `\u002F`) + `"`
	default:
		return ""
	}
}

// Noise holds the strings derived from one URL, split by origin.
//
// Design decision: path and query strings are kept apart so stats can
// report them separately, but they are always stripped path first. A query
// echo that contains the path ("/a/b?x=/a/b") is then only partly removed;
// existing corpora were built against that order.
type Noise struct {
	// Path holds the encodings of the normalized path, in encoder order.
	Path [][]byte
	// Query holds the raw and percent-encoded "?query" forms.
	Query [][]byte
}

// All returns the path strings followed by the query strings.
func (n Noise) All() [][]byte {
	all := make([][]byte, 0, len(n.Path)+len(n.Query))
	all = append(all, n.Path...)
	return append(all, n.Query...)
}

// Len returns the number of derived strings.
func (n Noise) Len() int {
	return len(n.Path) + len(n.Query)
}

// DeriveNoiseStrings returns the byte strings to delete from a body fetched
// from rawURL, path-derived strings first, in application order.
func DeriveNoiseStrings(rawURL string) ([][]byte, error) {
	t, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	return Derive(t).All(), nil
}

// Derive computes the noise strings for an already parsed target.
func Derive(t Target) Noise {
	var n Noise
	if t.HasUsablePath() {
		n.Path = PathNoise(t.NormalizedPath())
	}
	if t.HasUsableQuery() {
		n.Query = QueryNoise(t.Query)
	}
	return n
}

// PathNoise returns the encodings of a normalized path. It does not check
// the path length threshold; Derive does.
func PathNoise(path string) [][]byte {
	out := make([][]byte, 0, len(PathEncoders)+2)
	add := func(s string) {
		if s != "" {
			out = append(out, []byte(s))
		}
	}

	for _, e := range PathEncoders {
		s := e.Encode(path)
		// "a/b/c" flattens to "abc", too short to remove safely.
		if e == EncoderFlattened && runeLen(s) < MinPathLength {
			continue
		}
		add(s)
	}

	// Pages often echo the decoded path re-encoded with their own rules.
	if strings.Contains(path, "%") {
		unescaped := unescapeLenient(path)
		if runeLen(unescaped) >= MinUnescapedPathLength {
			add(EncoderPercentPlus.Encode(unescaped))
			add(EncoderPercentPlusLowerHex.Encode(unescaped))
		}
	}
	return out
}

// QueryNoise returns the forms of a raw query: with its leading '?', and
// that string percent-encoded with only '/' left unescaped.
func QueryNoise(query string) [][]byte {
	if query == "" {
		return nil
	}
	q := "?" + query
	return [][]byte{[]byte(q), []byte(percentEncode(q, "/"))}
}

const upperHex = "0123456789ABCDEF"

// lowerEscapes lower-cases the hex digits of every %XX escape.
func lowerEscapes(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	b := []byte(s)
	for i := 0; i+2 < len(b); i++ {
		if b[i] == '%' && isHex(b[i+1]) && isHex(b[i+2]) {
			b[i+1] = toLowerASCII(b[i+1])
			b[i+2] = toLowerASCII(b[i+2])
			i += 2
		}
	}
	return string(b)
}

// percentEncode escapes every byte outside the unreserved set and safe,
// using upper-case hex. Space becomes %20.
func percentEncode(s, safe string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(safe, c) >= 0 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&0x0f])
	}
	return sb.String()
}

// unescapeLenient decodes %XX escapes. Malformed escapes are kept as they
// are and byte sequences that are not valid UTF-8 become U+FFFD.
func unescapeLenient(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b = append(b, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		b = append(b, s[i])
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return replaceInvalidUTF8(b)
}

// replaceInvalidUTF8 substitutes U+FFFD for each maximal invalid subpart of
// b, so "\xff\xfe" gives two replacement characters and a truncated
// three-byte sequence gives one.
func replaceInvalidUTF8(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
			b = b[invalidPrefixLen(b):]
			continue
		}
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// invalidPrefixLen returns how many bytes at the start of b form the
// longest prefix of a well-formed sequence, at least 1.
func invalidPrefixLen(b []byte) int {
	var (
		n      int
		lo, hi byte = 0x80, 0xBF
	)
	switch c := b[0]; {
	case 0xC2 <= c && c <= 0xDF:
		n = 2
	case c == 0xE0:
		n, lo = 3, 0xA0
	case c == 0xED:
		n, hi = 3, 0x9F
	case 0xE1 <= c && c <= 0xEF:
		n = 3
	case c == 0xF0:
		n, lo = 4, 0x90
	case c == 0xF4:
		n, hi = 4, 0x8F
	case 0xF1 <= c && c <= 0xF3:
		n = 4
	default:
		return 1
	}
	if len(b) < 2 || b[1] < lo || b[1] > hi {
		return 1
	}
	k := 2
	for k < n && k < len(b) && 0x80 <= b[k] && b[k] <= 0xBF {
		k++
	}
	return k
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
