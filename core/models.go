package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint is a 64-bit content hash of a chunk's text.
// Identical text always produces the same fingerprint, which lets the
// comparator detect verbatim-unchanged chunks without touching embeddings.
type Fingerprint uint64

// FingerprintText computes the BLAKE2b-based fingerprint of text.
func FingerprintText(text string) Fingerprint {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum))
}

// Chunk is one ordered piece of a document version's text, with its
// embedding and metadata. Chunks are immutable once written; the index
// key is (DocumentID, Version, ChunkIndex), and ChunkIndex is dense and
// zero-based within a version.
type Chunk struct {
	DocumentID string
	Version    string
	ChunkIndex int
	Text       string
	Vector     []float32         // Embedding vector (populated by the ingestion pipeline)
	Metadata   map[string]string // Caller metadata plus document metadata (filename, title, ...)
	CreatedAt  time.Time
}

// Fingerprint returns the content fingerprint of the chunk's text.
func (c *Chunk) Fingerprint() Fingerprint {
	return FingerprintText(c.Text)
}

// SearchResult pairs a chunk with its cosine similarity to a query.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// VersionInfo describes one stored version of a document.
type VersionInfo struct {
	DocumentID string
	Version    string
	ChunkCount int
	Title      string
	PageCount  int
	IngestedAt time.Time
}

// IngestResult reports the outcome of ingesting one document version.
type IngestResult struct {
	DocumentID string
	Version    string
	Collection string
	ChunkCount int
}

// RetrievalResult carries ranked chunks and the assembled generation context.
type RetrievalResult struct {
	Query   string
	Chunks  []*SearchResult
	Context string
}

// Source is a citation for a retrieved chunk.
type Source struct {
	DocumentID string
	Version    string
	ChunkIndex int
	Title      string
	Score      float32
}

// Answer is a generated response with its supporting sources.
type Answer struct {
	Response string
	Sources  []Source
}

// ChangeKind classifies one record of a version comparison.
type ChangeKind int

const (
	// ChangeUnchanged marks a chunk present in both versions with no meaningful change.
	ChangeUnchanged ChangeKind = iota + 1
	// ChangeModified marks a chunk present in both versions with reworded content.
	ChangeModified
	// ChangeAdded marks a chunk present only in the new version.
	ChangeAdded
	// ChangeRemoved marks a chunk present only in the old version.
	ChangeRemoved
)

// String returns the lowercase name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeUnchanged:
		return "unchanged"
	case ChangeModified:
		return "modified"
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// NoIndex marks an absent chunk index in a ChangeRecord.
// Added records carry no OldIndex and removed records no NewIndex.
const NoIndex = -1

// ChangeRecord is one aligned entry of a ChangeSet.
// Unchanged and modified records carry both indices; added records only
// NewIndex, removed records only OldIndex. Absent fields hold NoIndex
// and the empty string.
type ChangeRecord struct {
	Kind       ChangeKind
	OldIndex   int
	NewIndex   int
	OldText    string
	NewText    string
	Similarity float32
	Diff       string // Character-level diff for modified records, empty otherwise
}

// ChangeSet is the ordered output of comparing two versions of a document.
// Every chunk of the old version and every chunk of the new version
// appears in exactly one record, in alignment-path order.
type ChangeSet struct {
	DocumentID string
	OldVersion string
	NewVersion string
	Records    []ChangeRecord
}

// Counts returns the number of records of each kind.
func (cs *ChangeSet) Counts() (unchanged, modified, added, removed int) {
	for _, rec := range cs.Records {
		switch rec.Kind {
		case ChangeUnchanged:
			unchanged++
		case ChangeModified:
			modified++
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		}
	}
	return
}
