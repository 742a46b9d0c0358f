package noise

import "fmt"

// RuleSpec is the configuration form of a Rule. Exactly one of Pattern or
// Open must be set; an Open rule also needs Close and MaxSpan.
type RuleSpec struct {
	// Name identifies the rule in stats and must be unique in a ruleset.
	Name string `yaml:"name" json:"name"`

	// Pattern is an RE2 expression; every match is removed.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Open, Close, MinSpan and MaxSpan describe a bounded span: an Open
	// match, then the nearest Close literal between MinSpan (default 1)
	// and MaxSpan bytes later. Multiline lets the span cross newlines.
	Open      string `yaml:"open,omitempty" json:"open,omitempty"`
	Close     string `yaml:"close,omitempty" json:"close,omitempty"`
	MinSpan   int    `yaml:"min_span,omitempty" json:"min_span,omitempty"`
	MaxSpan   int    `yaml:"max_span,omitempty" json:"max_span,omitempty"`
	Multiline bool   `yaml:"multiline,omitempty" json:"multiline,omitempty"`

	// Gate, when set, puts the rule in the gated tier: it runs only if the
	// body contains Gate after the unconditional tier.
	Gate string `yaml:"gate,omitempty" json:"gate,omitempty"`
}

// Compile turns the spec into a Rule. Errors wrap ErrInvalidRule.
func (s RuleSpec) Compile() (Rule, error) {
	if s.Name == "" {
		return Rule{}, fmt.Errorf("%w: rule has no name", ErrInvalidRule)
	}

	var (
		m   Matcher
		err error
	)
	switch {
	case s.Pattern != "" && s.Open != "":
		return Rule{}, fmt.Errorf("%w: rule %q sets both pattern and open", ErrInvalidRule, s.Name)
	case s.Pattern != "":
		m, err = NewPattern(s.Pattern)
	case s.Open != "":
		minSpan := s.MinSpan
		if minSpan == 0 {
			minSpan = 1
		}
		m, err = NewSpan(s.Open, s.Close, minSpan, s.MaxSpan, s.Multiline)
	default:
		return Rule{}, fmt.Errorf("%w: rule %q needs a pattern or an open/close span", ErrInvalidRule, s.Name)
	}
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", s.Name, err)
	}

	r := Rule{Name: s.Name, Matcher: m}
	if s.Gate != "" {
		r.Gate = []byte(s.Gate)
	}
	return r, nil
}

// CompileRules compiles specs in order and appends them to a clone of base.
func CompileRules(base *Ruleset, specs []RuleSpec) (*Ruleset, error) {
	rs := base.Clone()
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		r, err := s.Compile()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rs.Add(rules...); err != nil {
		return nil, err
	}
	return rs, nil
}
