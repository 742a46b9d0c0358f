package noise

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"
)

var errUnbalancedBrackets = errors.New("unbalanced brackets in host")

// Minimum lengths, in characters, below which a URL component is too short
// to be removed from a body without erasing unrelated content.
const (
	// MinPathLength applies to the normalized path and to the path with
	// its slashes removed.
	MinPathLength = 5
	// MinUnescapedPathLength applies to the percent-decoded path.
	MinUnescapedPathLength = 4
	// MinQueryLength applies to the raw query.
	MinQueryLength = 3
)

// Target is a URL split into the parts noise derivation needs.
// Path and Query keep their original escaping.
type Target struct {
	Raw      string
	Scheme   string
	Host     string
	Path     string
	Query    string
	Fragment string
}

// ParseTarget splits rawURL into scheme, host, path, query and fragment.
// The fragment is cut first at '#', then the query at '?', and the path is
// whatever lies between the authority and the query, still escaped.
//
// Design decision: the split is done by hand rather than with url.Parse,
// which rejects paths such as "/100%-cotton" that crawlers meet all the
// time. The only malformed input is an authority with an unbalanced or
// invalid bracketed IPv6 host.
func ParseTarget(rawURL string) (Target, error) {
	t := Target{Raw: rawURL}
	rest := rawURL

	if scheme, after, ok := splitScheme(rest); ok {
		t.Scheme, rest = scheme, after
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		t.Host, rest = rest[:end], rest[end:]
		if err := checkHost(t.Host); err != nil {
			return Target{}, fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
		}
	}
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		t.Fragment, rest = rest[i+1:], rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		t.Query, rest = rest[i+1:], rest[:i]
	}
	t.Path = rest
	return t, nil
}

// splitScheme cuts a leading "scheme:" off s. A scheme starts with a letter
// and holds only letters, digits, '+', '-' and '.'; it is lower-cased.
func splitScheme(s string) (scheme, rest string, ok bool) {
	i := strings.IndexByte(s, ':')
	if i <= 0 || !isASCIILetter(s[0]) {
		return "", s, false
	}
	for j := 1; j < i; j++ {
		c := s[j]
		if !isASCIILetter(c) && !('0' <= c && c <= '9') && c != '+' && c != '-' && c != '.' {
			return "", s, false
		}
	}
	return strings.ToLower(s[:i]), s[i+1:], true
}

// checkHost rejects an authority whose brackets do not pair up, or whose
// bracketed host is neither an IPv6 address nor an IPvFuture literal.
func checkHost(authority string) error {
	open := strings.IndexByte(authority, '[')
	closing := strings.IndexByte(authority, ']')
	switch {
	case open < 0 && closing < 0:
		return nil
	case open < 0 || closing < 0 || closing < open:
		return errUnbalancedBrackets
	}

	host := authority[open+1 : closing]
	if strings.HasPrefix(host, "v") || strings.HasPrefix(host, "V") {
		return nil
	}
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i]
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !addr.Is6() {
		return fmt.Errorf("invalid bracketed host %q", authority[open:closing+1])
	}
	return nil
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// NormalizedPath returns the path without trailing slashes and without its
// leading slash.
func (t Target) NormalizedPath() string {
	p := strings.TrimRight(t.Path, "/")
	return strings.TrimPrefix(p, "/")
}

// HasUsablePath reports whether the normalized path is long enough to be
// removed from a body.
func (t Target) HasUsablePath() bool {
	return runeLen(t.NormalizedPath()) >= MinPathLength
}

// HasUsableQuery reports whether the query is long enough to be removed
// from a body.
func (t Target) HasUsableQuery() bool {
	return runeLen(t.Query) >= MinQueryLength
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
