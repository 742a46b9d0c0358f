package corpus

import "errors"

var (
	// ErrMalformedPair is returned for a pair directory that does not hold
	// exactly two bodies with readable sidecars.
	ErrMalformedPair = errors.New("malformed pair")

	// ErrCorpusNotFound is returned when the corpus directory does not exist.
	ErrCorpusNotFound = errors.New("corpus directory not found")
)
