package badger

import "errors"

var (
	// ErrBackendRequired indicates a nil backend was passed to NewIndex.
	ErrBackendRequired = errors.New("backend is required")

	// ErrCollectionRequired indicates an empty collection name.
	ErrCollectionRequired = errors.New("collection name is required")
)
