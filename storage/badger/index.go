package badger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/storage"
)

// Index implements storage.VectorIndex on BadgerDB. Each index is bound
// to one logical collection; the collection record is created lazily on
// the first upsert.
type Index struct {
	backend    *Backend
	collection string
	ownBackend bool
	logger     *slog.Logger
}

var _ storage.VectorIndex = (*Index)(nil)

// OpenIndex opens (or creates) a BadgerDB-backed vector index at path,
// bound to the named collection.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func OpenIndex(path, collection string) (storage.VectorIndex, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	index, err := NewIndex(backend, collection)
	if err != nil {
		backend.Close()
		return nil, err
	}
	index.(*Index).ownBackend = true
	return index, nil
}

// NewIndex creates an index on an existing backend.
// The caller remains responsible for closing the backend.
func NewIndex(backend *Backend, collection string) (storage.VectorIndex, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	return &Index{
		backend:    backend,
		collection: collection,
		logger:     slog.Default().With("component", "badger-index", "collection", collection),
	}, nil
}

// Collection returns the logical collection name this index writes to.
func (ix *Index) Collection() string {
	return ix.collection
}

// Close closes the underlying backend if this index owns it.
func (ix *Index) Close() error {
	if ix.ownBackend {
		return ix.backend.Close()
	}
	return nil
}

// Upsert stores one complete chunk set as a single transaction.
// With replace set, any prior chunk set for the pair is deleted in the
// same transaction, so readers never observe a mix of old and new chunks.
func (ix *Index) Upsert(ctx context.Context, chunks []*core.Chunk, replace bool) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: empty chunk set", storage.ErrInvalidQuery)
	}
	if err := core.ValidateChunkSet(chunks); err != nil {
		return err
	}

	documentID := chunks[0].DocumentID
	version := chunks[0].Version

	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		versionKey := makeVersionKey(ix.collection, documentID, version)

		_, err := tx.Get(versionKey)
		switch err {
		case nil:
			if !replace {
				return fmt.Errorf("%w: %s@%s", core.ErrDuplicateVersion, documentID, version)
			}
			if err := ix.deleteChunkSet(tx, documentID, version); err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
			// First ingestion of this pair
		default:
			return err
		}

		// Collection record, created lazily and never deleted
		collectionKey := makeCollectionKey(ix.collection)
		if _, err := tx.Get(collectionKey); err == badger.ErrKeyNotFound {
			if err := tx.Set(collectionKey, []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, chunk := range chunks {
			key := makeChunkKey(ix.collection, documentID, version, chunk.ChunkIndex)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}

		info := versionInfoFromChunks(chunks)
		if err := tx.Set(versionKey, storage.MarshalVersionInfo(info)); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrTransactionFailed, err)
		}
		return nil
	}, true)

	if err != nil {
		return err
	}

	ix.logger.Debug("stored chunk set", "documentID", documentID, "version", version, "chunks", len(chunks), "replace", replace)
	return nil
}

// deleteChunkSet removes every chunk of a (document, version) pair
// inside an open write transaction.
func (ix *Index) deleteChunkSet(tx *badger.Txn, documentID, version string) error {
	prefix := makeChunkSetPrefix(ix.collection, documentID, version)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	var keys [][]byte
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Search scans candidate chunks, scores them by cosine similarity and
// returns the topK best, ties broken by ascending chunk index. The scan
// prefix narrows to the document or (document, version) when the filter
// pins them down.
func (ix *Index) Search(ctx context.Context, vector []float32, topK int, filter *storage.SearchFilter) ([]*core.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}

	prefix := makeCollectionChunkPrefix(ix.collection)
	if filter != nil && filter.DocumentID != "" {
		if filter.Version != "" {
			prefix = makeChunkSetPrefix(ix.collection, filter.DocumentID, filter.Version)
		} else {
			prefix = makeDocumentChunkPrefix(ix.collection, filter.DocumentID)
		}
	}

	var results []*core.SearchResult
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			if len(chunk.Vector) == 0 || !filter.Matches(chunk) {
				continue
			}

			results = append(results, &core.SearchResult{
				Chunk: chunk,
				Score: core.CosineSimilarity(vector, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, compareResults)

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// compareResults orders by descending similarity; equal scores fall back
// to document, version and ascending chunk index for deterministic output.
func compareResults(a, b *core.SearchResult) int {
	if a.Score > b.Score {
		return -1
	}
	if a.Score < b.Score {
		return 1
	}
	if c := cmpString(a.Chunk.DocumentID, b.Chunk.DocumentID); c != 0 {
		return c
	}
	if c := cmpString(a.Chunk.Version, b.Chunk.Version); c != 0 {
		return c
	}
	return a.Chunk.ChunkIndex - b.Chunk.ChunkIndex
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// FetchOrdered returns the version's chunks by ascending chunk index.
// Key order already matches index order, so a prefix scan is exact and
// deterministic.
func (ix *Index) FetchOrdered(ctx context.Context, documentID, version string) ([]*core.Chunk, error) {
	prefix := makeChunkSetPrefix(ix.collection, documentID, version)

	var chunks []*core.Chunk
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s@%s", core.ErrVersionNotFound, documentID, version)
	}
	return chunks, nil
}

// ListVersions returns catalog info for every stored version of a
// document, sorted by version string (key order).
func (ix *Index) ListVersions(ctx context.Context, documentID string) ([]*core.VersionInfo, error) {
	prefix := makeVersionPrefix(ix.collection, documentID)

	var infos []*core.VersionInfo
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var info *core.VersionInfo
			err := iter.Item().Value(func(val []byte) error {
				var err error
				info, err = storage.UnmarshalVersionInfo(val)
				return err
			})
			if err != nil {
				return err
			}
			infos = append(infos, info)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// HasVersion reports whether the (document, version) pair has chunks.
func (ix *Index) HasVersion(ctx context.Context, documentID, version string) (bool, error) {
	key := makeVersionKey(ix.collection, documentID, version)

	var found bool
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(key)
		switch err {
		case nil:
			found = true
			return nil
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	}, false)
	return found, err
}

// ListCollections returns the names of all collections ever written.
func (ix *Index) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := ix.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(collectionPrefix + ":")
		opts.PrefetchValues = false

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			names = append(names, collectionNameFromKey(iter.Item().Key()))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// versionInfoFromChunks derives the catalog record from a chunk set.
func versionInfoFromChunks(chunks []*core.Chunk) *core.VersionInfo {
	first := chunks[0]
	info := &core.VersionInfo{
		DocumentID: first.DocumentID,
		Version:    first.Version,
		ChunkCount: len(chunks),
		Title:      first.Metadata["title"],
		IngestedAt: first.CreatedAt,
	}
	if info.IngestedAt.IsZero() {
		info.IngestedAt = time.Now().UTC()
	}
	if pages, err := strconv.Atoi(first.Metadata["page_count"]); err == nil {
		info.PageCount = pages
	}
	return info
}
