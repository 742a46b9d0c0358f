// Package noise removes per-request artifacts from fetched page bodies so that
// two fetches of the same content compare equal.
//
// Normalization runs in three stages:
//   - strings derived from the URL path (the page echoing its own address in
//     several encodings) are deleted
//   - strings derived from the URL query are deleted
//   - a table of noise rules is applied: an unconditional tier first, then a
//     gated tier whose rules only run when a marker string is present
//
// Everything works on raw bytes. Bodies are never decoded here; decoding for
// display is the comparator's concern.
//
// # Usage
//
//	n := noise.New()
//	cleaned, err := n.Normalize(body, "http://example.com/some/page")
//	if err != nil {
//	    return err
//	}
//
// # Rules
//
// Rules are data. The built-in catalogue is returned by DefaultRules and more
// can be appended with Ruleset.Add or compiled from configuration with
// RuleSpec.Compile. Regular expressions use RE2, which caps counted repetition
// at 1000, so long bounded spans (HTML comments, inline Drupal settings) are
// expressed with Span matchers instead of patterns.
//
// A Normalizer holds only compiled, read-only state and is safe for
// concurrent use.
package noise
