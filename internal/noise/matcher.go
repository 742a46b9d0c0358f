package noise

import (
	"bytes"
	"fmt"
	"regexp"
)

// Matcher locates the byte ranges a rule erases. FindAll returns ascending,
// non-overlapping [start, end) pairs, or nil when nothing matches.
type Matcher interface {
	FindAll(body []byte) [][]int
	String() string
}

// Pattern is a Matcher backed by a compiled regular expression.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr into a Pattern.
func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidRule, expr, err)
	}
	return &Pattern{re: re}, nil
}

// MustPattern is like NewPattern but panics if expr does not compile.
// It is meant for the built-in catalogue.
func MustPattern(expr string) *Pattern {
	return &Pattern{re: regexp.MustCompile(expr)}
}

// FindAll implements Matcher.
func (p *Pattern) FindAll(body []byte) [][]int {
	return p.re.FindAllIndex(body, -1)
}

// String implements Matcher.
func (p *Pattern) String() string {
	return p.re.String()
}

// Bound limits the byte length of one capture group.
type Bound struct {
	Group    int
	Min, Max int
}

// BoundedPattern is a Pattern whose capture groups must also fall within
// byte-length bounds. RE2 counts repetition in runes, so "[^@]{1,100}"
// accepts up to 400 bytes of multi-byte text; expressing the bound here
// keeps it in bytes.
//
// Each bounded group must be pinned by the text around it (a negated class
// followed by the excluded delimiter), so that a start position whose group
// is out of bounds cannot match any other way.
type BoundedPattern struct {
	re     *regexp.Regexp
	bounds []Bound
}

// MustBoundedPattern compiles expr and attaches bounds. It panics if expr
// does not compile or a bound names a group expr does not have.
func MustBoundedPattern(expr string, bounds ...Bound) *BoundedPattern {
	re := regexp.MustCompile(expr)
	for _, b := range bounds {
		if b.Group < 1 || b.Group > re.NumSubexp() {
			panic(fmt.Sprintf("noise: pattern %q has no group %d", expr, b.Group))
		}
	}
	return &BoundedPattern{re: re, bounds: bounds}
}

// FindAll implements Matcher.
func (p *BoundedPattern) FindAll(body []byte) [][]int {
	var spans [][]int
	for pos := 0; pos <= len(body); {
		loc := p.re.FindSubmatchIndex(body[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if p.within(loc) {
			spans = append(spans, []int{start, end})
			if end > start {
				pos = end
				continue
			}
		}
		pos = start + 1
	}
	return spans
}

func (p *BoundedPattern) within(loc []int) bool {
	for _, b := range p.bounds {
		lo, hi := loc[2*b.Group], loc[2*b.Group+1]
		if lo < 0 {
			continue
		}
		if n := hi - lo; n < b.Min || n > b.Max {
			return false
		}
	}
	return true
}

// String implements Matcher.
func (p *BoundedPattern) String() string {
	return p.re.String()
}

// Span matches an opening pattern, then the nearest closing literal whose
// start lies between MinLen and MaxLen bytes past the end of the opening.
// Unless Multiline is set, the bytes in between may not contain a newline.
// This is the lazy ".{min,max}?" construct for bounds that RE2 will not
// compile.
//
// Design decision: the catalogue's long comment and settings spans have
// bounds of 4000 and 20000 bytes, far over RE2's repetition limit of 1000.
// Rewriting them as unbounded ".*?" would let a missing close literal
// swallow the rest of the line, so the bound is checked by hand after the
// opening match: find Open, then search Close only inside the window.
//
// Open is matched against the remainder of the body, so it should not
// rely on "^" or "\b" at its start.
type Span struct {
	Open      *regexp.Regexp
	Close     []byte
	MinLen    int
	MaxLen    int
	Multiline bool
}

// NewSpan compiles a Span and checks its bounds.
func NewSpan(open, closing string, minLen, maxLen int, multiline bool) (*Span, error) {
	re, err := regexp.Compile(open)
	if err != nil {
		return nil, fmt.Errorf("%w: open pattern %q: %v", ErrInvalidRule, open, err)
	}
	s := &Span{Open: re, Close: []byte(closing), MinLen: minLen, MaxLen: maxLen, Multiline: multiline}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func mustSpan(open, closing string, minLen, maxLen int) *Span {
	s, err := NewSpan(open, closing, minLen, maxLen, false)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Span) validate() error {
	switch {
	case len(s.Close) == 0:
		return fmt.Errorf("%w: span needs a closing string", ErrInvalidRule)
	case s.MinLen < 0:
		return fmt.Errorf("%w: span minimum %d is negative", ErrInvalidRule, s.MinLen)
	case s.MaxLen < 1:
		return fmt.Errorf("%w: span maximum %d must be positive", ErrInvalidRule, s.MaxLen)
	case s.MinLen > s.MaxLen:
		return fmt.Errorf("%w: span minimum %d exceeds maximum %d", ErrInvalidRule, s.MinLen, s.MaxLen)
	}
	return nil
}

// FindAll implements Matcher.
func (s *Span) FindAll(body []byte) [][]int {
	var spans [][]int
	pos := 0
	for pos <= len(body) {
		loc := s.Open.FindIndex(body[pos:])
		if loc == nil {
			break
		}
		start, inner := pos+loc[0], pos+loc[1]
		if end, ok := s.closeAfter(body, inner); ok {
			spans = append(spans, []int{start, end})
			pos = end
			continue
		}
		pos = start + 1
	}
	return spans
}

// closeAfter finds the earliest Close starting in [from+MinLen, from+MaxLen]
// and returns the offset just past it.
func (s *Span) closeAfter(body []byte, from int) (int, bool) {
	lo := from + s.MinLen
	hi := min(from+s.MaxLen, len(body))
	if !s.Multiline && from < hi {
		if nl := bytes.IndexByte(body[from:hi], '\n'); nl >= 0 {
			hi = from + nl
		}
	}
	if lo > hi {
		return 0, false
	}
	window := body[lo:min(hi+len(s.Close), len(body))]
	i := bytes.Index(window, s.Close)
	if i < 0 {
		return 0, false
	}
	return lo + i + len(s.Close), true
}

// String implements Matcher.
func (s *Span) String() string {
	return fmt.Sprintf("%s.{%d,%d}?%s", s.Open, s.MinLen, s.MaxLen, regexp.QuoteMeta(string(s.Close)))
}
