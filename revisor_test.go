package revisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/revisor/ai/mock"
	"github.com/pagemark/revisor/config"
	"github.com/pagemark/revisor/core"
	"github.com/pagemark/revisor/ingest"
	"github.com/pagemark/revisor/pdf"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := config.Default()
	cfg.Store.Path = t.TempDir()

	store, err := Open(cfg,
		WithProvider(mock.NewMockProvider()),
		WithExtractor(pdf.NewMockExtractor()))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreEndToEnd(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pipeline, err := store.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	result, err := pipeline.IngestText(ctx,
		"The onboarding flow requires two approvals.", "v1",
		&ingest.IngestOptions{DocumentID: "handbook"})
	require.NoError(t, err)
	assert.Equal(t, "pdf_documents", result.Collection)

	_, err = pipeline.IngestText(ctx,
		"The onboarding flow requires three approvals.", "v2",
		&ingest.IngestOptions{DocumentID: "handbook"})
	require.NoError(t, err)

	engine, err := store.NewEngine()
	require.NoError(t, err)

	retrieved, err := engine.Query(ctx, "how many approvals?", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, retrieved.Chunks)
	assert.NotEmpty(t, retrieved.Context)

	versions, err := engine.ListVersions(ctx, "handbook")
	require.NoError(t, err)
	require.Len(t, versions, 2)

	comparator, err := store.NewComparator()
	require.NoError(t, err)

	changeSet, err := comparator.Compare(ctx, "handbook", "v1", "v1")
	require.NoError(t, err)
	unchanged, modified, added, removed := changeSet.Counts()
	assert.Positive(t, unchanged)
	assert.Zero(t, modified+added+removed)
}

func TestStoreReopenPersists(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = t.TempDir()

	store, err := Open(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	pipeline, err := store.NewPipeline()
	require.NoError(t, err)

	_, err = pipeline.IngestText(context.Background(), "persisted content", "v1",
		&ingest.IngestOptions{DocumentID: "doc-1"})
	require.NoError(t, err)
	pipeline.Release()
	require.NoError(t, store.Close())

	reopened, err := Open(cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer reopened.Close()

	chunks, err := reopened.Index().FetchOrdered(context.Background(), "doc-1", "v1")
	require.NoError(t, err)
	assert.Equal(t, "persisted content", chunks[0].Text)
}

func TestStoreMissingVersionSurfacesError(t *testing.T) {
	store := openTestStore(t)

	comparator, err := store.NewComparator()
	require.NoError(t, err)

	_, err = comparator.Compare(context.Background(), "ghost", "v1", "v2")
	require.ErrorIs(t, err, core.ErrVersionNotFound)
}
