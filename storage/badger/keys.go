package badger

import (
	"encoding/binary"
	"strings"
)

// Key prefixes for different data types
const (
	chunkPrefix      = "chk"
	versionPrefix    = "ver"
	collectionPrefix = "col"
)

// escapeSegment backslash-escapes ':' and '\' in a key segment.
// An escaped segment never contains a raw ':', so segment boundaries
// stay unambiguous after joining: a prefix built from one identifier
// never matches keys of a different identifier.
func escapeSegment(s string) string {
	if !strings.ContainsAny(s, `:\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	for i := 0; i < len(s); i++ {
		if s[i] == ':' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// unescapeSegment reverses escapeSegment.
func unescapeSegment(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// makeChunkKey generates a key for one chunk.
// Format: chk:collection:documentID:version: + BigEndian chunk index,
// so iterating a chunk-set prefix yields chunks in index order.
// Segments are escaped before joining.
func makeChunkKey(collection, documentID, version string, index int) []byte {
	prefix := makeChunkSetPrefix(collection, documentID, version)
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(index))
	return buf
}

// makeChunkSetPrefix generates the common prefix of all chunk keys of
// one (document, version) pair.
func makeChunkSetPrefix(collection, documentID, version string) []byte {
	return []byte(chunkPrefix + ":" + escapeSegment(collection) + ":" + escapeSegment(documentID) + ":" + escapeSegment(version) + ":")
}

// makeDocumentChunkPrefix generates the common prefix of all chunk keys
// of one document across versions.
func makeDocumentChunkPrefix(collection, documentID string) []byte {
	return []byte(chunkPrefix + ":" + escapeSegment(collection) + ":" + escapeSegment(documentID) + ":")
}

// makeCollectionChunkPrefix generates the common prefix of all chunk
// keys in a collection.
func makeCollectionChunkPrefix(collection string) []byte {
	return []byte(chunkPrefix + ":" + escapeSegment(collection) + ":")
}

// makeVersionKey generates the catalog key for one (document, version) pair.
func makeVersionKey(collection, documentID, version string) []byte {
	return []byte(versionPrefix + ":" + escapeSegment(collection) + ":" + escapeSegment(documentID) + ":" + escapeSegment(version))
}

// makeVersionPrefix generates the common prefix of a document's catalog keys.
func makeVersionPrefix(collection, documentID string) []byte {
	return []byte(versionPrefix + ":" + escapeSegment(collection) + ":" + escapeSegment(documentID) + ":")
}

// makeCollectionKey generates the key for a collection record.
func makeCollectionKey(name string) []byte {
	return []byte(collectionPrefix + ":" + escapeSegment(name))
}

// collectionNameFromKey extracts the collection name from a collection key.
func collectionNameFromKey(key []byte) string {
	return unescapeSegment(string(key[len(collectionPrefix)+1:]))
}
