package noise

import "errors"

var (
	// ErrInvalidURL is returned when a URL cannot be split into its parts.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidRule is returned when a rule specification cannot be compiled.
	ErrInvalidRule = errors.New("invalid noise rule")

	// ErrDuplicateRule is returned when a ruleset already holds a rule with
	// the same name.
	ErrDuplicateRule = errors.New("duplicate noise rule")
)
