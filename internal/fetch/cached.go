package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/ArchiveTeam/dupespotter/internal/cache"
)

// Cached serves bodies from a store and fetches only on a miss.
//
// Design decision: a miss always re-reads the store after Put rather than
// returning the fetched body. Both backends keep the first body stored for
// a URL, so when two processes race on one cache directory every caller
// still sees the same bytes. Within one process, concurrent misses for a
// URL are collapsed into a single request.
type Cached struct {
	store  cache.Store
	source Source
	group  singleflight.Group
	logger *slog.Logger
}

// NewCached returns a Source that reads through store to source.
func NewCached(store cache.Store, source Source, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{store: store, source: source, logger: logger}
}

// Get implements Source. Once a body is stored for rawURL it is returned
// for every later call, without touching the network.
func (c *Cached) Get(ctx context.Context, rawURL string) ([]byte, error) {
	// Fast path: the body is already stored.
	body, err := c.store.Get(ctx, rawURL)
	if err == nil {
		c.logger.Debug("cache hit", "url", rawURL, "bytes", len(body))
		return body, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return nil, err
	}

	// Fetch errors are returned, never stored, so a retry fetches again.
	v, err, shared := c.group.Do(cache.Key(rawURL), func() (any, error) {
		body, err := c.source.Get(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if err := c.store.Put(ctx, rawURL, body); err != nil {
			return nil, fmt.Errorf("failed to cache %s: %w", rawURL, err)
		}
		// Another process may have stored a body first; that one wins.
		return c.store.Get(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("shared fetch", "url", rawURL)
	}
	return v.([]byte), nil //nolint:forcetypeassert // the group only returns []byte
}
