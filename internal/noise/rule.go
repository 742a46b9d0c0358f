package noise

import (
	"bytes"
	"fmt"
	"slices"
)

// Tier orders rule application. All unconditional rules run before any
// gated rule.
type Tier int

const (
	// TierUnconditional rules always run.
	TierUnconditional Tier = iota
	// TierGated rules run only when their gate marker is in the body.
	TierGated
)

// String returns the tier name.
func (t Tier) String() string {
	if t == TierGated {
		return "gated"
	}
	return "unconditional"
}

// Rule is one entry of the noise catalogue: every match of Matcher is
// removed from the body. A rule with a Gate only runs when the body contains
// that marker after the unconditional tier has run.
type Rule struct {
	Name    string
	Gate    []byte
	Matcher Matcher
}

// Tier returns the tier the rule belongs to.
func (r Rule) Tier() Tier {
	if len(r.Gate) > 0 {
		return TierGated
	}
	return TierUnconditional
}

// Ruleset is an ordered collection of rules. Rules keep their insertion
// order within a tier.
//
// A Ruleset is not safe for concurrent modification, but applying it from
// several goroutines is fine once it is built.
//
// Design decision: the tier is derived from the rule (gated or not) rather
// than stored as a separate list. Operator rules from the config file then
// land in the right tier by setting gate alone, and the gate is tested
// once per body after the whole unconditional tier has run.
type Ruleset struct {
	rules []Rule
	names map[string]struct{}
}

// NewRuleset returns an empty ruleset.
func NewRuleset() *Ruleset {
	return &Ruleset{names: make(map[string]struct{})}
}

// DefaultRuleset returns a ruleset holding the built-in catalogue.
func DefaultRuleset() *Ruleset {
	rs := NewRuleset()
	for _, r := range DefaultRules() {
		rs.rules = append(rs.rules, r)
		rs.names[r.Name] = struct{}{}
	}
	return rs
}

// Add appends rules at the end of their tiers. It fails without adding
// anything if a rule is incomplete or its name is already taken.
func (rs *Ruleset) Add(rules ...Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("%w: rule has no name", ErrInvalidRule)
		}
		if r.Matcher == nil {
			return fmt.Errorf("%w: rule %q has no matcher", ErrInvalidRule, r.Name)
		}
		_, dup := rs.names[r.Name]
		_, dupArg := seen[r.Name]
		if dup || dupArg {
			return fmt.Errorf("%w: %q", ErrDuplicateRule, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	for _, r := range rules {
		rs.rules = append(rs.rules, r)
		rs.names[r.Name] = struct{}{}
	}
	return nil
}

// Clone returns an independent copy that can be extended without touching rs.
func (rs *Ruleset) Clone() *Ruleset {
	c := &Ruleset{rules: slices.Clone(rs.rules), names: make(map[string]struct{}, len(rs.names))}
	for k := range rs.names {
		c.names[k] = struct{}{}
	}
	return c
}

// Len returns the number of rules.
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// Rules returns the rules in application order: the unconditional tier,
// then the gated tier.
func (rs *Ruleset) Rules() []Rule {
	out := make([]Rule, 0, len(rs.rules))
	out = append(out, rs.tier(TierUnconditional)...)
	return append(out, rs.tier(TierGated)...)
}

func (rs *Ruleset) tier(t Tier) []Rule {
	var out []Rule
	for _, r := range rs.rules {
		if r.Tier() == t {
			out = append(out, r)
		}
	}
	return out
}

// Apply runs every rule over body and returns the cleaned bytes.
func (rs *Ruleset) Apply(body []byte) []byte {
	return rs.apply(body, false, nil)
}

func (rs *Ruleset) apply(body []byte, mask bool, stats *Stats) []byte {
	for _, r := range rs.tier(TierUnconditional) {
		body = applyRule(r, body, mask, stats)
	}

	// Gates are checked once against the body as the unconditional tier
	// left it, so a gated rule cannot close the gate of the next one.
	gated := rs.tier(TierGated)
	open := make(map[string]bool)
	for _, r := range gated {
		g := string(r.Gate)
		if _, ok := open[g]; !ok {
			open[g] = bytes.Contains(body, r.Gate)
			if open[g] && stats != nil {
				stats.GatesOpened = append(stats.GatesOpened, g)
			}
		}
	}
	for _, r := range gated {
		if open[string(r.Gate)] {
			body = applyRule(r, body, mask, stats)
		}
	}
	return body
}

func applyRule(r Rule, body []byte, mask bool, stats *Stats) []byte {
	spans := r.Matcher.FindAll(body)
	if stats != nil && len(spans) > 0 {
		stats.recordRule(r.Name, len(spans), spanBytes(spans))
	}
	return erase(body, spans, mask)
}
