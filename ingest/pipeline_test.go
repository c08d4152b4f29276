package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/revisor/ai/mock"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/splitter"
	"github.com/pagemark/revisor/storage"
	storagebadger "github.com/pagemark/revisor/storage/badger"
)

func newTestPipeline(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Pipeline, storage.VectorIndex) {
	t.Helper()

	index, err := storagebadger.NewMemoryIndex("test_collection")
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	if embedder == nil {
		embedder = mock.NewMockEmbedder()
	}

	opts = append([]Option{WithRetry(3, time.Millisecond)}, opts...)
	pipeline, err := NewPipeline(index, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, index
}

func TestNewPipelineValidation(t *testing.T) {
	embedder := mock.NewMockEmbedder()

	_, err := NewPipeline(nil, embedder)
	require.ErrorIs(t, err, ErrIndexRequired)

	index, err := storagebadger.NewMemoryIndex("c")
	require.NoError(t, err)
	defer index.Close()

	_, err = NewPipeline(index, nil)
	require.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestIngestText(t *testing.T) {
	pipeline, index := newTestPipeline(t, nil)
	ctx := context.Background()

	text := "First paragraph about storage engines.\n\nSecond paragraph about indexes."
	result, err := pipeline.IngestText(ctx, text, "v1", &IngestOptions{
		DocumentID: "doc-1",
		Title:      "Storage Notes",
		PageCount:  2,
		Filename:   "notes.pdf",
		Metadata:   map[string]string{"author": "pat"},
	})
	require.NoError(t, err)

	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, "v1", result.Version)
	assert.Equal(t, "test_collection", result.Collection)
	assert.Positive(t, result.ChunkCount)

	chunks, err := index.FetchOrdered(ctx, "doc-1", "v1")
	require.NoError(t, err)
	require.Len(t, chunks, result.ChunkCount)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.NotEmpty(t, chunk.Vector)
		assert.Equal(t, "Storage Notes", chunk.Metadata["title"])
		assert.Equal(t, "2", chunk.Metadata["page_count"])
		assert.Equal(t, "notes.pdf", chunk.Metadata["filename"])
		assert.Equal(t, "pat", chunk.Metadata["author"])
		assert.NotEmpty(t, chunk.Metadata["ingested_at"])
	}
}

func TestIngestTextGeneratesDocumentID(t *testing.T) {
	pipeline, _ := newTestPipeline(t, nil)

	result, err := pipeline.IngestText(context.Background(), "some text", "v1", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.DocumentID)
}

func TestIngestTextRejectsEmptyInput(t *testing.T) {
	pipeline, _ := newTestPipeline(t, nil)
	ctx := context.Background()

	_, err := pipeline.IngestText(ctx, "   \n\t ", "v1", nil)
	require.ErrorIs(t, err, core.ErrEmptyInput)

	_, err = pipeline.IngestText(ctx, "some text", "", nil)
	require.ErrorIs(t, err, core.ErrEmptyVersion)
}

func TestIngestTextDuplicateVersion(t *testing.T) {
	pipeline, index := newTestPipeline(t, nil)
	ctx := context.Background()

	opts := &IngestOptions{DocumentID: "doc-1"}
	_, err := pipeline.IngestText(ctx, "original content", "v1", opts)
	require.NoError(t, err)

	_, err = pipeline.IngestText(ctx, "updated content", "v1", opts)
	require.ErrorIs(t, err, core.ErrDuplicateVersion)

	result, err := pipeline.IngestText(ctx, "updated content", "v1", &IngestOptions{
		DocumentID: "doc-1",
		Replace:    true,
	})
	require.NoError(t, err)

	chunks, err := index.FetchOrdered(ctx, "doc-1", "v1")
	require.NoError(t, err)
	require.Len(t, chunks, result.ChunkCount)
	assert.Equal(t, "updated content", chunks[0].Text)
}

func TestIngestTextEmbedsConcurrentlyInOrder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	pipeline, index := newTestPipeline(t, embedder)
	ctx := context.Background()

	split, err := splitter.New(20, 0)
	require.NoError(t, err)
	require.NoError(t, WithSplitter(split)(pipeline))

	text := "alpha section one. beta section two. gamma section three. delta section four."
	result, err := pipeline.IngestText(ctx, text, "v1", &IngestOptions{DocumentID: "doc-1"})
	require.NoError(t, err)
	require.Greater(t, result.ChunkCount, 1)

	// Each stored vector must be the embedding of its own text,
	// regardless of completion order on the pool.
	chunks, err := index.FetchOrdered(ctx, "doc-1", "v1")
	require.NoError(t, err)
	for _, chunk := range chunks {
		expected := mock.DeterministicVector(chunk.Text, 384)
		assert.Equal(t, expected, chunk.Vector, "vector/text mismatch at index %d", chunk.ChunkIndex)
	}
}

func TestIngestTextRetriesEmbedding(t *testing.T) {
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("transient provider failure")
		}
		return mock.DeterministicVector(text, 8), nil
	}

	pipeline, _ := newTestPipeline(t, embedder)

	_, err := pipeline.IngestText(context.Background(), "short text", "v1", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestIngestTextEmbeddingFailureAborts(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, core.ErrEmbeddingProvider
	}

	pipeline, index := newTestPipeline(t, embedder)
	ctx := context.Background()

	_, err := pipeline.IngestText(ctx, "short text", "v1", &IngestOptions{DocumentID: "doc-1"})
	require.ErrorIs(t, err, core.ErrEmbeddingProvider)

	// Nothing may be stored after a failed embedding pass
	_, err = index.FetchOrdered(ctx, "doc-1", "v1")
	require.ErrorIs(t, err, core.ErrVersionNotFound)
}

func TestWithRetryValidation(t *testing.T) {
	index, err := storagebadger.NewMemoryIndex("c")
	require.NoError(t, err)
	defer index.Close()

	_, err = NewPipeline(index, mock.NewMockEmbedder(), WithRetry(0, time.Second))
	require.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
