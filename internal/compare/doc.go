// Package compare renders a line diff of two cleaned page bodies.
//
// Bodies stay raw bytes until they reach this package. Decode turns them
// into text, replacing invalid UTF-8 with U+FFFD, and Diff yields a unified
// diff with three lines of context, one line at a time. An empty sequence
// means the two bodies are identical as decoded text.
//
// The package reports differences only. Whether a diff makes two pages
// duplicates is up to the caller.
package compare
