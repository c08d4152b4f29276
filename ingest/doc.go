// Package ingest implements the document ingestion pipeline: text is
// split into overlapping chunks, each chunk is embedded concurrently on
// a worker pool, and the complete chunk set is stored atomically under
// its (document, version) pair. A URL path downloads and extracts PDFs
// before running the same pipeline, with per-document failure isolation
// for batches.
package ingest
