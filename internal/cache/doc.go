// Package cache stores fetched page bodies keyed by URL.
//
// Each URL has at most one stored body. The first body stored for a URL is
// kept; later Puts for the same URL are ignored, so repeated comparisons see
// exactly the bytes that were fetched the first time.
//
// Two backends implement Store:
//   - FileStore keeps one file per URL, named by the hex MD5 of the URL,
//     next to a "<key>.info.json" sidecar holding {"url": "..."}. Existing
//     cache directories in this layout can be reused as they are.
//   - SQLiteStore keeps every body in a single SQLite database, which is
//     easier to copy around than thousands of small files.
//
// Both are safe for concurrent use within one process.
package cache
