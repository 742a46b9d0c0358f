// Package log builds the slog loggers used across dupespotter.
//
// Every logger wraps its handler in a SecureHandler, which redacts values
// that look like credentials before they reach the output. Fetching pages
// often involves per-site cookies and URLs that carry session identifiers,
// and verbose logs tend to get pasted into bug reports.
//
//	logger := log.NewLogger(os.Stderr, verbose, false)
//	slog.SetDefault(logger)
//
// Redaction covers attributes whose key names a credential (cookie,
// authorization, session, ...), values shaped like bearer or basic auth
// tokens and JWTs, and credential-named query parameters inside URL values.
// Cache keys and body fingerprints are hex digests and are left alone.
package log
