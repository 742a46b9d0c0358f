package noise

import (
	"bytes"
	"log/slog"
)

// Normalizer strips per-request noise from page bodies.
type Normalizer struct {
	rules  *Ruleset
	mask   bool
	logger *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRuleset replaces the built-in catalogue.
func WithRuleset(rs *Ruleset) Option {
	return func(n *Normalizer) {
		if rs != nil {
			n.rules = rs
		}
	}
}

// WithMask makes the normalizer overwrite noise with NUL bytes instead of
// deleting it.
func WithMask(mask bool) Option {
	return func(n *Normalizer) {
		n.mask = mask
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New returns a Normalizer using the built-in rules unless told otherwise.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		rules:  DefaultRuleset(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Result is a cleaned body with a record of what was removed.
type Result struct {
	Body  []byte
	Stats *Stats
}

// Normalize returns body with the noise for rawURL removed. The same body
// and URL always give the same output. body is not modified.
func (n *Normalizer) Normalize(body []byte, rawURL string) ([]byte, error) {
	res, err := n.NormalizeWithStats(body, rawURL)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// NormalizeWithStats is Normalize that also reports per-stage statistics.
func (n *Normalizer) NormalizeWithStats(body []byte, rawURL string) (*Result, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	derived := Derive(target)

	stats := newStats(len(body))
	stats.NoiseStrings = derived.Len()

	out := bytes.Clone(body)
	var removed int
	out, removed = removeAll(out, derived.Path, n.mask)
	stats.NoiseBytes += removed
	out, removed = removeAll(out, derived.Query, n.mask)
	stats.NoiseBytes += removed

	out = n.rules.apply(out, n.mask, stats)
	if out == nil {
		out = []byte{}
	}
	stats.OutputBytes = len(out)

	n.logger.Debug("normalized body",
		"url", rawURL,
		"input_bytes", stats.InputBytes,
		"output_bytes", stats.OutputBytes,
		"noise_strings", stats.NoiseStrings,
	)
	return &Result{Body: out, Stats: stats}, nil
}

// Rules returns the ruleset in use.
func (n *Normalizer) Rules() *Ruleset {
	return n.rules
}
