package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultUserAgent identifies the tool to the sites it fetches.
const DefaultUserAgent = "dupespotter (+https://github.com/ArchiveTeam/dupespotter)"

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 32 * 1024 * 1024

// Source returns the body for a URL.
type Source interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HeaderFunc returns extra request headers for a host. It may return nil.
type HeaderFunc func(host string) http.Header

// Response is a fetched page.
type Response struct {
	// URL is the requested URL.
	URL string
	// FinalURL is the URL after redirects.
	FinalURL   string
	StatusCode int
	Body       []byte
	// Truncated is set when the body exceeded the size limit.
	Truncated bool
}

// Fetcher performs HTTP GETs.
type Fetcher struct {
	client      Doer
	userAgent   string
	maxBodySize int64
	limiter     *HostLimiter
	headers     HeaderFunc
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the body size limit. Non-positive values keep the default.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLimiter sets the per-host limiter.
func WithLimiter(l *HostLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithHeaders sets the per-host header source.
func WithHeaders(fn HeaderFunc) Option {
	return func(f *Fetcher) {
		f.headers = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher returns a Fetcher sending requests through client.
func NewFetcher(client Doer, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs rawURL. Any response counts as success, including 4xx and 5xx;
// the status is reported in the Response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRequest, rawURL, err)
	}
	host := hostOf(req.URL)

	req.Header.Set("User-Agent", f.userAgent)
	if f.headers != nil {
		for k, vs := range f.headers(host) {
			req.Header.Del(k)
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	if err := f.limiter.Wait(ctx, host); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, rawURL, err)
	}

	f.logger.Debug("fetching", "url", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrTransport, rawURL, err)
	}

	out := &Response{
		URL:        rawURL,
		FinalURL:   rawURL,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		out.FinalURL = resp.Request.URL.String()
	}
	if int64(len(body)) > f.maxBodySize {
		out.Body = body[:f.maxBodySize]
		out.Truncated = true
	}
	return out, nil
}

// Get implements Source. Error statuses, redirects and truncation are
// logged; the body is returned in every case.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	attrs := []any{"url", rawURL, "status", resp.StatusCode, "bytes", len(resp.Body)}
	if resp.FinalURL != rawURL {
		attrs = append(attrs, "final_url", resp.FinalURL)
	}
	if resp.Truncated {
		f.logger.Warn("response body truncated", append(attrs, "limit", f.maxBodySize)...)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		f.logger.Warn("keeping error response body", attrs...)
	} else {
		f.logger.Debug("fetched", attrs...)
	}
	return resp.Body, nil
}

func hostOf(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}
