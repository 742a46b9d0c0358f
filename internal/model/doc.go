// Package model defines the data passed between fetching, normalization,
// comparison and reporting.
//
// A Job carries two Pages through the pipeline. Fetching fills in the raw
// bodies, normalization the cleaned ones, and the diff step attaches a
// Comparison. Corpus runs collect one CorpusResult per Job into a
// CorpusSummary.
//
// Raw bytes are never modified once fetched. Cleaned bytes are derived from
// the raw bytes, the URL and the ruleset, and are never persisted.
package model
