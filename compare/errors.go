package compare

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrGeneratorRequired is returned when change narration is
	// attempted without a generator configured.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrInvalidThresholds is returned when the configured thresholds
	// are out of range or ordered incorrectly.
	ErrInvalidThresholds = errors.New("thresholds must satisfy 0 < match <= unchanged <= 1")

	// ErrInvalidArguments is returned when the document ID or either
	// version argument is missing.
	ErrInvalidArguments = errors.New("document ID and both versions are required")
)
