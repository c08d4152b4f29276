// Package splitter provides boundary-aware text chunking.
//
// Text is split on a priority list of separators (paragraphs, lines,
// sentences, clauses, words) with a hard character cut as last resort.
// Units are accumulated greedily up to the configured chunk size, and
// each new chunk re-includes the trailing units of the previous one up
// to the configured overlap.
package splitter
