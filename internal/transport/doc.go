// Package transport builds the HTTP clients used to fetch pages.
//
// A client either dials directly or goes through a SOCKS5 proxy, which can
// be an external one (for example a Tor daemon listening on 9050) or an
// embedded Tor process started with EmbeddedTor. Clients keep cookies in a
// jar scoped by the public suffix list and follow at most MaxRedirects
// redirects; past that the last redirect response is returned as is, body
// included.
package transport
