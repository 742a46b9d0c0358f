package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ArchiveTeam/dupespotter/internal/cache"
	"github.com/ArchiveTeam/dupespotter/internal/config"
	"github.com/ArchiveTeam/dupespotter/internal/fetch"
	"github.com/ArchiveTeam/dupespotter/internal/noise"
	"github.com/ArchiveTeam/dupespotter/internal/transport"
)

// source is the cached page source shared by the commands that fetch.
type source struct {
	*fetch.Cached
	store  cache.Store
	client *lazyClient
}

// Close stops the transport and closes the cache.
func (s *source) Close() {
	s.client.close()
	_ = s.store.Close()
}

// newSource opens the cache and prepares a fetcher whose network client
// is only built on the first cache miss.
func newSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*source, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Per-host politeness applies to cache misses only.
	client := &lazyClient{ctx: ctx, cfg: cfg, logger: logger}
	limiter := fetch.NewHostLimiter(cfg.RequestDelay, fetch.RateSettings{
		Requests: cfg.RateRequests,
		Window:   cfg.RateWindow,
	})
	fetcher := fetch.NewFetcher(client,
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLimiter(limiter),
		fetch.WithHeaders(cfg.File.Headers),
		fetch.WithLogger(logger),
	)

	return &source{
		Cached: fetch.NewCached(store, fetcher, logger),
		store:  store,
		client: client,
	}, nil
}

// openStore opens the configured cache backend in the resolved directory.
func openStore(cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	dir := cfg.ResolvedCacheDir()
	store, err := cache.Open(cfg.Store, dir, cache.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", dir, err)
	}
	logger.Debug("cache opened", "dir", dir, "store", cfg.Store)
	return store, nil
}

// lazyClient builds the HTTP client, and starts Tor when asked to, on the
// first request. Commands answered from the cache never touch the network.
//
// Design decision: the transport is a fetch.Doer rather than an
// *http.Client built up front. Bootstrapping Tor takes minutes and a proxy
// check needs the proxy to be up, yet a rerun of a comparison usually hits
// the cache for both URLs. The first Do pays the setup cost once, and a
// setup failure is returned from every later Do as well.
type lazyClient struct {
	// ctx bounds the Tor bootstrap and the proxy check.
	ctx    context.Context //nolint:containedctx // bounds the Tor bootstrap
	cfg    *config.Config
	logger *slog.Logger

	once   sync.Once
	client *http.Client
	// tor is set only when the embedded daemon was started.
	tor *transport.EmbeddedTor
	err error
}

// Do implements fetch.Doer.
func (c *lazyClient) Do(req *http.Request) (*http.Response, error) {
	c.once.Do(func() {
		c.client, c.err = c.build()
	})
	if c.err != nil {
		return nil, c.err
	}
	return c.client.Do(req)
}

// build picks the transport: embedded Tor, then a SOCKS5 proxy, then a
// direct connection. Config validation rules out asking for both.
func (c *lazyClient) build() (*http.Client, error) {
	opts := transport.Options{Timeout: c.cfg.Timeout}

	switch {
	case c.cfg.UseTor:
		c.logger.Warn("starting embedded Tor daemon, this may take a few minutes")
		c.tor = transport.NewEmbeddedTor(transport.WithStartupTimeout(c.cfg.TorStartupTimeout))
		if err := c.tor.Start(c.ctx); err != nil {
			return nil, err
		}
		c.logger.Info("embedded Tor daemon started", "socks", c.tor.SocksAddr())
		return c.tor.HTTPClient(opts)

	case c.cfg.ProxyAddress != "":
		if err := transport.CheckProxy(c.ctx, c.cfg.ProxyAddress); err != nil {
			return nil, fmt.Errorf("proxy check failed (make sure a SOCKS5 proxy is running at %s): %w",
				c.cfg.ProxyAddress, err)
		}
		opts.ProxyAddress = c.cfg.ProxyAddress
	}

	return transport.NewHTTPClient(opts)
}

// close stops the Tor daemon if build started one.
func (c *lazyClient) close() {
	if c.tor == nil {
		return
	}
	if err := c.tor.Stop(); err != nil {
		c.logger.Error("failed to stop embedded Tor", "error", err)
	}
}

// newNormalizer builds a normalizer from the built-in and configured rules.
func newNormalizer(cfg *config.Config, mask bool, logger *slog.Logger) (*noise.Normalizer, error) {
	rules, err := cfg.Ruleset()
	if err != nil {
		return nil, err
	}
	return noise.New(
		noise.WithRuleset(rules),
		noise.WithMask(mask),
		noise.WithLogger(logger),
	), nil
}
