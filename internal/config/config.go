package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/ArchiveTeam/dupespotter/internal/cache"
	"github.com/ArchiveTeam/dupespotter/internal/fetch"
	"github.com/ArchiveTeam/dupespotter/internal/noise"
	"github.com/ArchiveTeam/dupespotter/internal/transport"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "dupespotter"

	// DefaultTimeout bounds one HTTP request, redirects included.
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize is the number of corpus pairs checked at once.
	DefaultBatchSize = 4

	// DefaultStore is the cache backend.
	DefaultStore = cache.BackendFile

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits how much of a response is read.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultTorStartupTimeout is how long the embedded Tor daemon gets to
	// bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds every runtime option. It is built by NewConfig, overlaid
// with the config file and then with flags, and validated once.
type Config struct {
	// CacheDir is where fetched bodies are kept. Empty means XDGCacheDir.
	CacheDir string

	// Store selects the cache backend (file or sqlite).
	Store string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// ProxyAddress is a SOCKS5 proxy in host:port form. Empty means the
	// environment's HTTP proxy settings apply.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and fetches through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// UserAgent is the User-Agent header.
	UserAgent string

	// RequestDelay is the minimum pause between two requests to one host.
	RequestDelay time.Duration

	// RateRequests and RateWindow cap requests per host. Both zero disables it.
	RateRequests int
	RateWindow   time.Duration

	// MaxBodySize caps the bytes read per response. Zero means the default.
	MaxBodySize int64

	// BatchSize is the number of corpus pairs checked at once.
	BatchSize int

	// JSONReport and MarkdownReport select the output format. At most one
	// may be set; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the report instead of stdout when set.
	ReportFile string

	// Verbose switches logging to debug level.
	Verbose bool

	// ConfigFilePath is the config file to load. Empty means search.
	ConfigFilePath string

	// File is the loaded config file, if any.
	File *File
}

// NewConfig returns a Config filled with defaults.
func NewConfig() *Config {
	return &Config{
		Store:             DefaultStore,
		Timeout:           DefaultTimeout,
		TorStartupTimeout: DefaultTorStartupTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		BatchSize:         DefaultBatchSize,
	}
}

// XDGConfigDir returns the XDG config directory for dupespotter.
// On Linux: ~/.config/dupespotter
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for dupespotter.
// On Linux: ~/.cache/dupespotter
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ResolvedCacheDir returns CacheDir, or the XDG cache directory when unset.
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return XDGCacheDir()
}

// ApplyFile copies the fetch section of f over c. Flags applied afterwards
// take precedence.
func (c *Config) ApplyFile(f *File) {
	c.File = f
	if f == nil {
		return
	}
	fc := f.Fetch
	if fc.CacheDir != "" {
		c.CacheDir = fc.CacheDir
	}
	if fc.Store != "" {
		c.Store = fc.Store
	}
	if fc.Timeout != 0 {
		c.Timeout = fc.Timeout
	}
	if fc.Proxy != "" {
		c.ProxyAddress = fc.Proxy
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if fc.RequestDelay != 0 {
		c.RequestDelay = fc.RequestDelay
	}
	if fc.Rate.Requests != 0 || fc.Rate.Window != 0 {
		c.RateRequests = fc.Rate.Requests
		c.RateWindow = fc.Rate.Window
	}
	if fc.MaxBodySize != 0 {
		c.MaxBodySize = fc.MaxBodySize
	}
}

// Ruleset returns the built-in rules followed by the config file's rules.
func (c *Config) Ruleset() (*noise.Ruleset, error) {
	base := noise.DefaultRuleset()
	if c.File == nil || len(c.File.Rules) == 0 {
		return base, nil
	}
	rs, err := noise.CompileRules(base, c.File.Rules)
	if err != nil {
		return nil, fmt.Errorf("config file rules: %w", err)
	}
	return rs, nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.RateRequests < 0 || c.RateWindow < 0 || (c.RateRequests == 0) != (c.RateWindow == 0) {
		return ErrInvalidRateLimit
	}
	if c.Store != cache.BackendFile && c.Store != cache.BackendSQLite {
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
	if c.ProxyAddress != "" {
		if c.UseTor {
			return ErrConflictingTransport
		}
		if !transport.IsValidProxyAddress(c.ProxyAddress) {
			return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.ProxyAddress)
		}
	}
	return nil
}
