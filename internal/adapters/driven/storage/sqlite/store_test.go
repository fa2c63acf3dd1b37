package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/core/domain"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	store, err := NewDocumentStore(filepath.Join(t.TempDir(), "documents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDocument(id string, createdAt time.Time) *domain.Document {
	return &domain.Document{
		ID:          id,
		Filename:    "report.txt",
		FileType:    ".txt",
		FileSize:    42,
		RawText:     "Raw body.",
		CleanedText: "Raw body.",
		Pages:       domain.PageMap{0},
		Chunks: []domain.Chunk{
			{ID: "chunk-0", Index: 0, Content: "Raw body.", Start: 0, End: 9},
		},
		Status:    domain.StatusCompleted,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("doc-1", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Filename, got.Filename)
	assert.Equal(t, doc.CleanedText, got.CleanedText)
	assert.Equal(t, doc.Chunks, got.Chunks)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
}

func TestChunkOffsetsSurviveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("doc-1", time.Now().UTC())
	doc.CleanedText = "First chunk body. Second chunk here."
	doc.Chunks = []domain.Chunk{
		{ID: "chunk-0", Index: 0, Content: "First chunk body.", Start: 0, End: 17},
		{
			ID: "chunk-1", Index: 1, Content: "Second chunk here", Start: 17, End: 34,
			Metadata: domain.ChunkMetadata{PageRange: "1", Section: "Intro"},
		},
	}
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got.Chunks, 2)
	assert.Equal(t, doc.Chunks, got.Chunks)
	assert.Equal(t, 1, got.Chunks[1].Index)
	assert.Equal(t, 17, got.Chunks[1].Start)
	assert.Equal(t, 34, got.Chunks[1].End)
}

func TestSaveReplacesExistingSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("doc-1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, doc))

	doc.Status = domain.StatusIndexed
	doc.IndexingStats = &domain.IndexingStats{ChunksCount: 1, TotalTokens: 3}
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)
	require.NotNil(t, got.IndexingStats)
	assert.Equal(t, 1, got.IndexingStats.ChunksCount)
}

func TestGetUnknownReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrdersByCreationTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, sampleDocument("doc-b", base.Add(2*time.Minute))))
	require.NoError(t, store.Save(ctx, sampleDocument("doc-a", base)))
	require.NoError(t, store.Save(ctx, sampleDocument("doc-c", base.Add(time.Minute))))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-a", docs[0].ID)
	assert.Equal(t, "doc-c", docs[1].ID)
	assert.Equal(t, "doc-b", docs[2].ID)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDocument("doc-1", time.Now().UTC())))
	require.NoError(t, store.Delete(ctx, "doc-1"))
	require.NoError(t, store.Delete(ctx, "doc-1"))

	_, err := store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	ctx := context.Background()

	first, err := NewDocumentStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, sampleDocument("doc-1", time.Now().UTC())))
	require.NoError(t, first.Close())

	second, err := NewDocumentStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "report.txt", got.Filename)
}
