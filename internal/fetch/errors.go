package fetch

import "errors"

var (
	// ErrTransport is returned when no HTTP response could be obtained.
	ErrTransport = errors.New("transport error")

	// ErrInvalidRequest is returned when a request cannot be built for a URL.
	ErrInvalidRequest = errors.New("invalid request")
)
