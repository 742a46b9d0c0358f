// Package pipeline runs a comparison job through a sequence of steps.
//
// A job starts with two URLs and ends with a Comparison. The standard
// sequence is fetch, normalize, diff. Jobs loaded from a corpus arrive with
// their bodies already set, and the fetch step leaves those pages alone.
//
// BatchProcessor runs many jobs at once with errgroup and a concurrency
// limit, keeping results in input order.
package pipeline
