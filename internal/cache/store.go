package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArchiveTeam/dupespotter/internal/model"
)

// Store is a URL-keyed body cache.
type Store interface {
	// Get returns the stored body for rawURL, or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, rawURL string) ([]byte, error)

	// Put stores body for rawURL unless a body is already stored.
	Put(ctx context.Context, rawURL string, body []byte) error

	// List returns every stored entry.
	List(ctx context.Context) ([]Entry, error)

	// Close releases the store's resources.
	Close() error
}

// Entry describes one stored body.
type Entry struct {
	Key      string    `json:"key"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	StoredAt time.Time `json:"stored_at"`
}

// Info is the sidecar record written next to each cached file.
type Info struct {
	URL string `json:"url"`
}

// Key returns the cache key of rawURL.
func Key(rawURL string) string {
	return model.URLKey(rawURL)
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Option configures a store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open opens the named backend rooted at dir, creating it if needed.
func Open(backend, dir string, opts ...Option) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir, opts...)
	case BackendSQLite:
		return OpenSQLite(dir, DefaultSQLiteOptions(), opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
