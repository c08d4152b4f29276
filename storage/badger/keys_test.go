package badger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeSegmentRoundTrip(t *testing.T) {
	cases := []string{
		"plain",
		"1.0",
		"1.0:beta",
		`with\backslash`,
		`both\:mixed`,
		":",
		`\`,
		"",
	}
	for _, s := range cases {
		assert.Equal(t, s, unescapeSegment(escapeSegment(s)), "round trip of %q", s)
	}
}

func TestEscapedSegmentsContainNoRawSeparator(t *testing.T) {
	for _, s := range []string{"1.0:beta", "a:b:c", `x\:y`} {
		assert.NotContains(t, escapeSegment(s), ":", "escaped %q", s)
	}
}

// A prefix built from one identifier must never match keys built from a
// different identifier, even when one identifier embeds the separator.
func TestChunkKeyPrefixesAreDisjoint(t *testing.T) {
	prefix := makeChunkSetPrefix("col", "doc", "1.0")

	assert.True(t, bytes.HasPrefix(makeChunkKey("col", "doc", "1.0", 0), prefix))
	assert.False(t, bytes.HasPrefix(makeChunkKey("col", "doc", "1.0:beta", 0), prefix))
	assert.False(t, bytes.HasPrefix(makeChunkKey("col", "doc:x", "1.0", 0), prefix))

	docPrefix := makeDocumentChunkPrefix("col", "doc")
	assert.True(t, bytes.HasPrefix(makeChunkKey("col", "doc", "v2", 0), docPrefix))
	assert.False(t, bytes.HasPrefix(makeChunkKey("col", "doc:x", "v2", 0), docPrefix))

	catalogPrefix := makeVersionPrefix("col", "doc")
	assert.True(t, bytes.HasPrefix(makeVersionKey("col", "doc", "1.0"), catalogPrefix))
	assert.False(t, bytes.HasPrefix(makeVersionKey("col", "doc:x", "1.0"), catalogPrefix))
}

func TestCollectionNameFromKey(t *testing.T) {
	for _, name := range []string{"pdf_documents", "with:colon"} {
		assert.Equal(t, name, collectionNameFromKey(makeCollectionKey(name)))
	}
}
