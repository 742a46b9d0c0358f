package model

import (
	"crypto/md5" //nolint:gosec // cache keys, not a security boundary
	"encoding/hex"
)

// Page is one fetched document.
//
// Design decision: bodies are kept out of JSON. Reports carry lengths and
// fingerprints through PageSummary; the bodies themselves live in the
// cache and can be several megabytes each.
type Page struct {
	// URL is the address the body was fetched from. It also drives
	// URL-derived noise removal.
	URL string `json:"url"`

	// Key is the cache key for URL.
	Key string `json:"key"`

	// Raw is the body as fetched.
	Raw []byte `json:"-"`

	// Cleaned is Raw after normalization. Nil until normalized.
	Cleaned []byte `json:"-"`
}

// NewPage returns a page for rawURL with its cache key filled in.
func NewPage(rawURL string) *Page {
	return &Page{URL: rawURL, Key: URLKey(rawURL)}
}

// URLKey returns the hex MD5 of the URL. The on-disk cache layout depends on
// this exact form.
func URLKey(rawURL string) string {
	sum := md5.Sum([]byte(rawURL)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// IsFetched reports whether the raw body has been loaded.
func (p *Page) IsFetched() bool {
	return p.Raw != nil
}

// IsNormalized reports whether the cleaned body has been computed.
func (p *Page) IsNormalized() bool {
	return p.Cleaned != nil
}
