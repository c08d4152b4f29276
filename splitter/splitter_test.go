package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(0, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = New(-5, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = New(10, -1)
	assert.ErrorIs(t, err, ErrInvalidOverlap)

	_, err = New(10, 10)
	assert.ErrorIs(t, err, ErrInvalidOverlap)

	s, err := New(10, 2)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSplitEmptyInput(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   \n\t \n\n  "))
}

func TestSplitSmallTextSingleChunk(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	text := "A short paragraph that fits."
	chunks := s.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitQuickBrownFox(t *testing.T) {
	s, err := New(10, 2)
	require.NoError(t, err)

	chunks := s.Split("The quick brown fox.")
	require.Greater(t, len(chunks), 1, "text longer than chunk size must split")

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 10, "chunk %q exceeds max size", chunk)
	}

	// Word boundaries, no overlap fits within 2 runes here
	assert.Equal(t, []string{"The quick ", "brown fox."}, chunks)
	assert.Equal(t, "The quick brown fox.", strings.Join(chunks, ""))
}

func TestSplitLosslessWithoutOverlap(t *testing.T) {
	s, err := New(25, 0)
	require.NoError(t, err)

	text := "First paragraph here.\n\nSecond paragraph, a bit longer than the first one. " +
		"Third sentence follows. And a fourth one, with clauses, for good measure."
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	assert.Equal(t, text, strings.Join(chunks, ""), "zero-overlap chunks must concatenate to the input")
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 25)
	}
}

func TestSplitOverlapCarriesTrailingUnits(t *testing.T) {
	s, err := New(12, 6)
	require.NoError(t, err)

	chunks := s.Split("aa bb cc dd ee")
	require.Len(t, chunks, 2)
	assert.Equal(t, "aa bb cc dd ", chunks[0])
	assert.Equal(t, "cc dd ee", chunks[1])

	// Overlap region is whole units and stays within the budget
	assert.True(t, strings.HasSuffix(chunks[0], "cc dd "))
	assert.True(t, strings.HasPrefix(chunks[1], "cc dd "))
}

func TestSplitOverlapNeverExceedsBudget(t *testing.T) {
	s, err := New(10, 2)
	require.NoError(t, err)

	chunks := s.Split("alpha beta gamma delta epsilon zeta")
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		overlap := commonOverlap(chunks[i-1], chunks[i])
		assert.LessOrEqual(t, overlap, 2, "chunks %d/%d overlap by %d runes", i-1, i, overlap)
	}
}

func TestSplitHardCharacterCut(t *testing.T) {
	s, err := New(10, 2)
	require.NoError(t, err)

	word := strings.Repeat("x", 25)
	chunks := s.Split(word)
	require.Len(t, chunks, 3)

	assert.Equal(t, strings.Repeat("x", 10), chunks[0])
	assert.Equal(t, strings.Repeat("x", 10), chunks[1])
	assert.Equal(t, strings.Repeat("x", 9), chunks[2])

	// Step of chunkSize-overlap covers every character
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	assert.Equal(t, 25+2*2, total, "each boundary repeats exactly the overlap")
}

func TestSplitParagraphPriority(t *testing.T) {
	s, err := New(30, 0)
	require.NoError(t, err)

	text := "Short first paragraph.\n\nShort second paragraph."
	chunks := s.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Short first paragraph.\n\n", chunks[0])
	assert.Equal(t, "Short second paragraph.", chunks[1])
}

func TestSplitOrderMatchesSource(t *testing.T) {
	s, err := New(15, 3)
	require.NoError(t, err)

	text := "one two three four five six seven eight nine ten"
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// Each chunk must start at or before where the previous chunk ended
	pos := 0
	for i, chunk := range chunks {
		idx := strings.Index(text[pos:], strings.TrimRight(chunk, " "))
		require.GreaterOrEqual(t, idx, 0, "chunk %d (%q) out of order", i, chunk)
		pos += idx
	}
}

func TestSplitUnicode(t *testing.T) {
	s, err := New(10, 0)
	require.NoError(t, err)

	text := strings.Repeat("日本語テキスト ", 4)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 10)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

// commonOverlap returns the length of the longest suffix of a that is a
// prefix of b, in runes.
func commonOverlap(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	max := len(ra)
	if len(rb) < max {
		max = len(rb)
	}
	for n := max; n > 0; n-- {
		if string(ra[len(ra)-n:]) == string(rb[:n]) {
			return n
		}
	}
	return 0
}
