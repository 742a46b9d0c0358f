package noise

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Stats describes what one normalization removed.
type Stats struct {
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`
	// NoiseStrings counts the URL-derived strings that were searched for.
	NoiseStrings int `json:"noise_strings"`
	// NoiseBytes counts the bytes removed by URL-derived strings.
	NoiseBytes  int            `json:"noise_bytes"`
	RuleMatches map[string]int `json:"rule_matches,omitempty"`
	RuleBytes   map[string]int `json:"rule_bytes,omitempty"`
	GatesOpened []string       `json:"gates_opened,omitempty"`
}

func newStats(input int) *Stats {
	return &Stats{
		InputBytes:  input,
		RuleMatches: make(map[string]int),
		RuleBytes:   make(map[string]int),
	}
}

func (s *Stats) recordRule(name string, matches, n int) {
	s.RuleMatches[name] += matches
	s.RuleBytes[name] += n
}

// RemovedBytes returns how much shorter the output is than the input.
// It is zero for masked output, which keeps the input length.
func (s *Stats) RemovedBytes() int {
	return s.InputBytes - s.OutputBytes
}

// String renders the stats one rule per line, busiest rules first.
func (s *Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "input: %d bytes, output: %d bytes\n", s.InputBytes, s.OutputBytes)
	fmt.Fprintf(&b, "url noise: %d strings, %d bytes\n", s.NoiseStrings, s.NoiseBytes)
	if len(s.GatesOpened) > 0 {
		fmt.Fprintf(&b, "gates: %s\n", strings.Join(s.GatesOpened, ", "))
	}
	names := slices.SortedFunc(maps.Keys(s.RuleBytes), func(a, b string) int {
		if d := s.RuleBytes[b] - s.RuleBytes[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	for _, name := range names {
		fmt.Fprintf(&b, "  %-20s %4d matches %8d bytes\n", name, s.RuleMatches[name], s.RuleBytes[name])
	}
	return b.String()
}
