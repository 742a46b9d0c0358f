package cache

import "errors"

var (
	// ErrNotFound is returned by Get when no body is stored for the URL.
	ErrNotFound = errors.New("not cached")

	// ErrStoreNotFound is returned when opening a store that must already
	// exist but does not.
	ErrStoreNotFound = errors.New("cache store not found")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)
