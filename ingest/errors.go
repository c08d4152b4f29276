package ingest

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrExtractorRequired is returned when a URL ingestion is attempted
	// without a text extractor configured.
	ErrExtractorRequired = errors.New("text extractor required")

	// ErrInvalidMaxAttempts is returned for a non-positive retry budget.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrDownloadFailed is returned when a document cannot be fetched.
	ErrDownloadFailed = errors.New("download failed")
)
