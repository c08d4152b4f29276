package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignSequencesDiagonal(t *testing.T) {
	sim := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	pairs := alignSequences(sim, 0.7)
	assert.Equal(t, []alignedPair{{0, 0}, {1, 1}, {2, 2}}, pairs)
}

func TestAlignSequencesSkipsWeakPairs(t *testing.T) {
	sim := [][]float32{
		{1, 0},
		{0, 0.5},
	}
	pairs := alignSequences(sim, 0.7)
	assert.Equal(t, []alignedPair{{0, 0}}, pairs)
}

func TestAlignSequencesPreservesOrder(t *testing.T) {
	// The two strong pairs cross; an order-preserving alignment can
	// keep only the higher-scoring one.
	sim := [][]float32{
		{0, 0.9},
		{0.8, 0},
	}
	pairs := alignSequences(sim, 0.7)
	assert.Equal(t, []alignedPair{{0, 1}}, pairs)
}

func TestAlignSequencesMaximizesTotalSimilarity(t *testing.T) {
	// Greedily taking the single best pair (0,1) at 0.9 would block
	// (1,1); the optimal alignment keeps both diagonal pairs instead.
	sim := [][]float32{
		{0.75, 0.9},
		{0, 0.8},
	}
	pairs := alignSequences(sim, 0.7)
	assert.Equal(t, []alignedPair{{0, 0}, {1, 1}}, pairs)
}

func TestAlignSequencesHandlesGaps(t *testing.T) {
	sim := [][]float32{
		{1, 0, 0},
		{0, 0, 1},
	}
	pairs := alignSequences(sim, 0.7)
	assert.Equal(t, []alignedPair{{0, 0}, {1, 2}}, pairs)
}

func TestAlignSequencesEmpty(t *testing.T) {
	assert.Nil(t, alignSequences(nil, 0.7))
	assert.Nil(t, alignSequences([][]float32{}, 0.7))
	assert.Nil(t, alignSequences([][]float32{{}}, 0.7))
}
