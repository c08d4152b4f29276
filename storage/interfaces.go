package storage

import (
	"context"

	"github.com/pagemark/revisor/core"
)

// SearchFilter restricts a similarity search. Empty fields match anything;
// Metadata entries require exact equality on chunk metadata values.
type SearchFilter struct {
	DocumentID string
	Version    string
	Metadata   map[string]string
}

// Matches reports whether a chunk satisfies the filter.
func (f *SearchFilter) Matches(chunk *core.Chunk) bool {
	if f == nil {
		return true
	}
	if f.DocumentID != "" && chunk.DocumentID != f.DocumentID {
		return false
	}
	if f.Version != "" && chunk.Version != f.Version {
		return false
	}
	for key, want := range f.Metadata {
		if got, ok := chunk.Metadata[key]; !ok || got != want {
			return false
		}
	}
	return true
}

// VectorIndex is the persistent store of chunks keyed by
// (document_id, version, chunk_index). Implementations must be
// thread-safe and support concurrent access.
type VectorIndex interface {
	// Upsert stores one complete chunk set for a (document, version) pair
	// as a single atomic unit. If the pair already exists, Upsert returns
	// core.ErrDuplicateVersion unless replace is true, in which case the
	// prior chunk set is deleted and the new one inserted in the same
	// transaction: concurrent readers observe either the whole old set or
	// the whole new set, never a mix. The chunk set must be dense and
	// zero-based (core.ValidateChunkSet).
	Upsert(ctx context.Context, chunks []*core.Chunk, replace bool) error

	// Search returns up to topK chunks ordered by descending cosine
	// similarity to vector, ties broken by ascending chunk index.
	// A nil filter matches all chunks. Zero hits is a valid result.
	Search(ctx context.Context, vector []float32, topK int, filter *SearchFilter) ([]*core.SearchResult, error)

	// FetchOrdered returns the version's chunks ordered by chunk index.
	// The result is exact and gap-free; comparison correctness depends on
	// it. Returns core.ErrVersionNotFound if the pair has no chunks.
	FetchOrdered(ctx context.Context, documentID, version string) ([]*core.Chunk, error)

	// ListVersions returns info for every stored version of a document,
	// sorted by version string. An unknown document yields an empty slice.
	ListVersions(ctx context.Context, documentID string) ([]*core.VersionInfo, error)

	// HasVersion reports whether the (document, version) pair has chunks.
	HasVersion(ctx context.Context, documentID, version string) (bool, error)

	// Collection returns the logical collection name this index writes to.
	Collection() string

	// ListCollections returns the names of all collections ever written.
	// Collections are created lazily on first upsert and never deleted.
	ListCollections(ctx context.Context) ([]string, error)

	// Close closes the index and releases resources.
	Close() error
}
