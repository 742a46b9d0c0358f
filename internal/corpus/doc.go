// Package corpus runs the normalizer over stored page pairs that are known
// to be duplicates.
//
// A corpus directory holds one subdirectory per pair. Each pair directory
// contains exactly two bodies, each with a "<name>.info.json" sidecar that
// records the URL it was fetched from:
//
//	tests/
//	  forum-thread/
//	    0a1b...        (body)
//	    0a1b....info.json
//	    9f8e...
//	    9f8e....info.json
//
// A pair passes when both bodies normalize to the same text. Body files
// written by the file cache already have this layout, so a pair can be made
// by copying two cache entries into a new directory.
package corpus
