package config

import (
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/ArchiveTeam/dupespotter/internal/noise"
)

// SiteConfig holds request settings for one host.
type SiteConfig struct {
	// Cookie is sent as the Cookie header, e.g. "a=b; c=d".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// RateConfig is the per-host rate limit.
type RateConfig struct {
	Requests int           `yaml:"requests,omitempty"`
	Window   time.Duration `yaml:"window,omitempty"`
}

// FetchConfig is the fetch section of the config file.
type FetchConfig struct {
	CacheDir     string        `yaml:"cache_dir,omitempty"`
	Store        string        `yaml:"store,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	Proxy        string        `yaml:"proxy,omitempty"`
	UserAgent    string        `yaml:"user_agent,omitempty"`
	RequestDelay time.Duration `yaml:"request_delay,omitempty"`
	Rate         RateConfig    `yaml:"rate,omitempty"`
	MaxBodySize  int64         `yaml:"max_body_size,omitempty"`
}

// File is the structure of the .dupespotter config file.
type File struct {
	Fetch FetchConfig `yaml:"fetch,omitempty"`

	// Sites maps host names to their settings. A site entry also applies
	// to subdomains of that host.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every host and are overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Rules are appended to the built-in noise rules.
	Rules []noise.RuleSpec `yaml:"rules,omitempty"`
}

// GetSiteConfig returns the defaults merged with the most specific site
// entry matching host.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{Cookie: cf.Defaults.Cookie}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	site, ok := cf.lookupSite(strings.ToLower(host))
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	return result
}

// lookupSite tries host, then each parent domain.
func (cf *File) lookupSite(host string) (SiteConfig, bool) {
	for h := host; h != ""; {
		if site, ok := cf.Sites[h]; ok {
			return site, true
		}
		i := strings.IndexByte(h, '.')
		if i < 0 {
			break
		}
		h = h[i+1:]
	}
	return SiteConfig{}, false
}

// Headers returns the request headers for host, nil when none are
// configured. It fits fetch.HeaderFunc.
func (cf *File) Headers(host string) http.Header {
	if cf == nil {
		return nil
	}
	site := cf.GetSiteConfig(host)
	if site.Cookie == "" && len(site.Headers) == 0 {
		return nil
	}
	h := make(http.Header, len(site.Headers)+1)
	for k, v := range site.Headers {
		h.Set(k, v)
	}
	if site.Cookie != "" {
		h.Set("Cookie", site.Cookie)
	}
	return h
}
