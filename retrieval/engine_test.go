package retrieval

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/revisor/ai/mock"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/storage"
	storagebadger "github.com/pagemark/revisor/storage/badger"
)

// seedChunks stores a version whose chunk vectors are injected directly,
// bypassing the pipeline, so similarity ordering is fully controlled.
func seedChunks(t *testing.T, index storage.VectorIndex, documentID, version string, texts []string, vectors [][]float32) {
	t.Helper()
	chunks := make([]*core.Chunk, len(texts))
	for i := range texts {
		chunks[i] = &core.Chunk{
			DocumentID: documentID,
			Version:    version,
			ChunkIndex: i,
			Text:       texts[i],
			Vector:     vectors[i],
			Metadata:   map[string]string{"title": "Seeded"},
			CreatedAt:  time.Now().UTC(),
		}
	}
	require.NoError(t, index.Upsert(context.Background(), chunks, false))
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, storage.VectorIndex, *mock.MockEmbedder) {
	t.Helper()
	index, err := storagebadger.NewMemoryIndex("test_collection")
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	embedder := mock.NewMockEmbedder()
	engine, err := NewEngine(index, embedder, opts...)
	require.NoError(t, err)
	return engine, index, embedder
}

func TestNewEngineValidation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	_, err := NewEngine(nil, embedder)
	require.ErrorIs(t, err, ErrIndexRequired)

	index, err := storagebadger.NewMemoryIndex("c")
	require.NoError(t, err)
	defer index.Close()

	_, err = NewEngine(index, nil)
	require.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestQueryRanksBySimilarity(t *testing.T) {
	engine, index, embedder := newTestEngine(t, WithTopK(2))
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	seedChunks(t, index, "doc-1", "v1",
		[]string{"orthogonal", "aligned", "close"},
		[][]float32{{0, 1}, {1, 0}, {0.9, 0.1}})

	result, err := engine.Query(ctx, "find aligned", nil)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2)

	assert.Equal(t, "aligned", result.Chunks[0].Chunk.Text)
	assert.Equal(t, "close", result.Chunks[1].Chunk.Text)
	assert.Greater(t, result.Chunks[0].Score, result.Chunks[1].Score)
	assert.Equal(t, "aligned\n\n---\n\nclose", result.Context)
}

func TestQueryEmptyQuery(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Query(context.Background(), "  \n", nil)
	require.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestQueryZeroHitsIsSuccess(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	result, err := engine.Query(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.Empty(t, result.Context)
}

func TestQueryContextBudgetDropsLowerRanked(t *testing.T) {
	engine, index, embedder := newTestEngine(t, WithContextBudget(25))
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	seedChunks(t, index, "doc-1", "v1",
		[]string{"twenty characters ok", "this one gets dropped"},
		[][]float32{{1, 0}, {0.9, 0.1}})

	result, err := engine.Query(ctx, "q", nil)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2, "ranked chunks are returned even when dropped from context")
	assert.Equal(t, "twenty characters ok", result.Context)
}

func TestQueryContextTruncatesOversizedTopChunk(t *testing.T) {
	engine, index, embedder := newTestEngine(t, WithContextBudget(10))
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1}, nil
	}
	seedChunks(t, index, "doc-1", "v1",
		[]string{strings.Repeat("x", 40)},
		[][]float32{{1}})

	result, err := engine.Query(ctx, "q", nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 10), result.Context)
}

func TestQueryWithFilter(t *testing.T) {
	engine, index, embedder := newTestEngine(t)
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	seedChunks(t, index, "doc-1", "v1", []string{"old"}, [][]float32{{1, 0}})
	seedChunks(t, index, "doc-1", "v2", []string{"new"}, [][]float32{{1, 0}})

	result, err := engine.Query(ctx, "q", &storage.SearchFilter{DocumentID: "doc-1", Version: "v2"})
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "new", result.Chunks[0].Chunk.Text)
}

func TestAnswer(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.Response = "Generated answer."

	engine, index, embedder := newTestEngine(t, WithGenerator(generator))
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	seedChunks(t, index, "doc-1", "v1", []string{"relevant excerpt"}, [][]float32{{1, 0}})

	answer, err := engine.Answer(ctx, "what does it say?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Generated answer.", answer.Response)

	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "doc-1", answer.Sources[0].DocumentID)
	assert.Equal(t, "v1", answer.Sources[0].Version)
	assert.Equal(t, 0, answer.Sources[0].ChunkIndex)
	assert.Equal(t, "Seeded", answer.Sources[0].Title)

	prompts := generator.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "relevant excerpt")
	assert.Contains(t, prompts[0], "what does it say?")
}

func TestAnswerZeroHits(t *testing.T) {
	generator := mock.NewMockGenerator()
	engine, _, _ := newTestEngine(t, WithGenerator(generator))

	answer, err := engine.Answer(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Contains(t, answer.Response, "No relevant content")
	assert.Empty(t, answer.Sources)
	assert.Zero(t, generator.CallCount(), "generator must not run without context")
}

func TestAnswerRequiresGenerator(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Answer(context.Background(), "q", nil)
	require.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestListVersions(t *testing.T) {
	engine, index, _ := newTestEngine(t)
	ctx := context.Background()

	seedChunks(t, index, "doc-1", "v1", []string{"a"}, [][]float32{{1}})
	seedChunks(t, index, "doc-1", "v2", []string{"a", "b"}, [][]float32{{1}, {1}})

	infos, err := engine.ListVersions(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "v1", infos[0].Version)
	assert.Equal(t, "v2", infos[1].Version)
	assert.Equal(t, 2, infos[1].ChunkCount)
}
