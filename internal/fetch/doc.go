// Package fetch retrieves page bodies over HTTP and through the cache.
//
// Fetcher performs one GET per call and returns the body whatever the
// status code: error pages are content too, and two error pages can be
// compared like any others. Only failures to get a response at all are
// errors, and they wrap ErrTransport.
//
// Cached puts a cache.Store in front of a Source. A URL is fetched at most
// once per store; concurrent requests for the same URL share one fetch.
//
// HostLimiter spaces out requests to the same host, combining a fixed delay
// with an optional token bucket.
package fetch
