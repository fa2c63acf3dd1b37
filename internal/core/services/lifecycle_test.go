package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
	"github.com/docforge/docforge/internal/logging"
)

// memStore is an in-memory DocumentStore for tests.
type memStore struct {
	mu   sync.Mutex
	docs map[string]*domain.Document
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]*domain.Document{}}
}

func (s *memStore) Save(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *memStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, *doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// stubExtractor decodes bytes as UTF-8 text. failures counts down: while
// positive, Extract fails. When gate is set, the first call signals
// started and then blocks until the gate is closed.
type stubExtractor struct {
	mu       sync.Mutex
	failures int
	gate     chan struct{}
	started  chan struct{}
	gated    bool
}

func (e *stubExtractor) SupportedExtensions() []string { return []string{".txt"} }

func (e *stubExtractor) Extract(_ context.Context, data []byte, _ string) (string, error) {
	e.mu.Lock()
	if e.failures > 0 {
		e.failures--
		e.mu.Unlock()
		return "", fmt.Errorf("%w: corrupt input", domain.ErrExtraction)
	}
	gate, started, gated := e.gate, e.started, e.gated
	e.gated = false
	e.mu.Unlock()

	if gated && gate != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-gate
	}
	return string(data), nil
}

type stubRegistry struct {
	ext driven.Extractor
}

func (r *stubRegistry) Get(filename string) driven.Extractor {
	if strings.HasSuffix(strings.ToLower(filename), ".txt") {
		return r.ext
	}
	return nil
}

func (r *stubRegistry) Register(driven.Extractor) {}
func (r *stubRegistry) List() []string            { return []string{".txt"} }

type stubEmbedder struct {
	pingErr  error
	embedErr error
	pingHook func()
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int   { return 3 }
func (e *stubEmbedder) ModelName() string { return "stub-embed" }
func (e *stubEmbedder) Close() error      { return nil }

func (e *stubEmbedder) Ping(context.Context) error {
	if e.pingHook != nil {
		e.pingHook()
	}
	return e.pingErr
}

type stubVectorStore struct {
	mu        sync.Mutex
	pingErr   error
	upsertErr error
	upserts   int
	deleted   []string
}

func (v *stubVectorStore) Upsert(_ context.Context, _ string, _ []domain.Chunk, _ [][]float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.upsertErr != nil {
		return v.upsertErr
	}
	v.upserts++
	return nil
}

func (v *stubVectorStore) Delete(_ context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deleted = append(v.deleted, id)
	return nil
}

func (v *stubVectorStore) Ping(context.Context) error { return v.pingErr }
func (v *stubVectorStore) Close() error               { return nil }

type fixture struct {
	pipeline  *Lifecycle
	store     *memStore
	extractor *stubExtractor
	embedder  *stubEmbedder
	vectors   *stubVectorStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     newMemStore(),
		extractor: &stubExtractor{},
		embedder:  &stubEmbedder{},
		vectors:   &stubVectorStore{},
	}
	f.pipeline = NewLifecycle(
		f.store,
		&stubRegistry{ext: f.extractor},
		nil,
		f.embedder,
		f.vectors,
		Options{Workers: 2, Defaults: domain.DefaultProcessConfig()},
		logging.Discard(),
	)
	t.Cleanup(func() { _ = f.pipeline.Close() })
	return f
}

func testConfig() domain.ProcessConfig {
	cfg := domain.DefaultProcessConfig()
	cfg.Chunking.ChunkSize = 120
	cfg.Chunking.OverlapSize = 20
	cfg.Chunking.MinChunkSize = 40
	cfg.Chunking.Strategy = domain.StrategyParagraph
	return cfg
}

func sampleText() []byte {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		b.WriteString("This paragraph talks about the system and the way the pieces fit together.\n\n")
	}
	return []byte(b.String())
}

func waitForStatus(t *testing.T, f *fixture, id string, want domain.DocumentStatus) *domain.Document {
	t.Helper()
	var doc *domain.Document
	require.Eventually(t, func() bool {
		var err error
		doc, err = f.pipeline.Get(context.Background(), id)
		return err == nil && doc.Status == want
	}, 5*time.Second, 5*time.Millisecond, "document never reached %s", want)
	return doc
}

func uploadAndProcess(t *testing.T, f *fixture, cfg domain.ProcessConfig) *domain.Document {
	t.Helper()
	ctx := context.Background()
	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)
	require.Equal(t, domain.StatusUploaded, doc.Status)

	require.NoError(t, f.pipeline.Process(ctx, doc.ID, cfg))
	return waitForStatus(t, f, doc.ID, domain.StatusCompleted)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipeline.Upload(context.Background(), "slides.pptx", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestProcessRunsFullPipeline(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())

	assert.NotEmpty(t, doc.RawText)
	assert.NotEmpty(t, doc.CleanedText)
	assert.NotEmpty(t, doc.Chunks)
	assert.Nil(t, doc.LastError)
	assert.Nil(t, doc.IndexingStats)
	assert.Equal(t, testConfig(), doc.Config)
	assert.Greater(t, doc.CleaningStats.OriginalLength, 0)

	for i, c := range doc.Chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, doc.CleanedText[c.Start:c.End], c.Content)
	}
}

func TestProcessRejectsInvalidConfigWithoutStateChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)

	bad := testConfig()
	bad.Chunking.ChunkSize = 50
	bad.Chunking.MinChunkSize = 80

	err = f.pipeline.Process(ctx, doc.ID, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	got, err := f.pipeline.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUploaded, got.Status)
}

func TestExtractionFailureParksDocumentInError(t *testing.T) {
	f := newFixture(t)
	f.extractor.failures = 1
	ctx := context.Background()

	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)
	require.NoError(t, f.pipeline.Process(ctx, doc.ID, testConfig()))

	got := waitForStatus(t, f, doc.ID, domain.StatusError)
	require.NotNil(t, got.LastError)
	assert.Equal(t, domain.ErrorKindExtraction, got.LastError.Kind)
}

func TestRetryAfterExtractionFailure(t *testing.T) {
	f := newFixture(t)
	f.extractor.failures = 1
	ctx := context.Background()

	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)
	require.NoError(t, f.pipeline.Process(ctx, doc.ID, testConfig()))
	waitForStatus(t, f, doc.ID, domain.StatusError)

	require.NoError(t, f.pipeline.Retry(ctx, doc.ID))
	got := waitForStatus(t, f, doc.ID, domain.StatusCompleted)
	assert.Nil(t, got.LastError)
	assert.NotEmpty(t, got.Chunks)
}

func TestRetryOnlyValidFromError(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())
	assert.ErrorIs(t, f.pipeline.Retry(context.Background(), doc.ID), domain.ErrInvalidTransition)
}

func TestIndexFailsFastWhenDisconnected(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())

	f.vectors.pingErr = errors.New("connection refused")
	err := f.pipeline.Index(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	got, gerr := f.pipeline.Get(context.Background(), doc.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Nil(t, got.IndexingStats)
}

func TestIndexRecordsStats(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())

	require.NoError(t, f.pipeline.Index(context.Background(), doc.ID))

	got, err := f.pipeline.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)
	require.NotNil(t, got.IndexingStats)
	assert.Equal(t, len(doc.Chunks), got.IndexingStats.ChunksCount)
	assert.Greater(t, got.IndexingStats.TotalTokens, 0)
	assert.Equal(t, domain.StrategyParagraph, got.IndexingStats.ChunkingStrategy)
	assert.Equal(t, 120, got.IndexingStats.ChunkSize)
	assert.Equal(t, 20, got.IndexingStats.ChunkOverlap)
	assert.True(t, got.IndexingStats.CleaningApplied)
	assert.Equal(t, 1, f.vectors.upserts)
}

func TestIndexTransientFailureRevertsToCompleted(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())

	f.vectors.upsertErr = errors.New("write timeout")
	err := f.pipeline.Index(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrIndexingFailed)

	got, gerr := f.pipeline.Get(context.Background(), doc.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Nil(t, got.IndexingStats)
	require.NotNil(t, got.LastError)
	assert.Equal(t, domain.ErrorKindIndexing, got.LastError.Kind)

	// Retryable without re-cleaning or re-chunking.
	f.vectors.upsertErr = nil
	require.NoError(t, f.pipeline.Index(context.Background(), doc.ID))
	got, gerr = f.pipeline.Get(context.Background(), doc.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusIndexed, got.Status)
}

func TestIndexOnlyValidFromCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)

	assert.ErrorIs(t, f.pipeline.Index(ctx, doc.ID), domain.ErrInvalidTransition)
}

func TestReprocessInvalidatesIndexing(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())
	require.NoError(t, f.pipeline.Index(context.Background(), doc.ID))

	cfg := testConfig()
	cfg.Chunking.ChunkSize = 160
	require.NoError(t, f.pipeline.Reprocess(context.Background(), doc.ID, cfg))

	got := waitForStatus(t, f, doc.ID, domain.StatusCompleted)
	assert.Nil(t, got.IndexingStats, "reprocess must clear indexing stats")
	assert.Equal(t, 160, got.Config.Chunking.ChunkSize)

	// Reaching indexed again requires an explicit index call.
	require.NoError(t, f.pipeline.Index(context.Background(), doc.ID))
	got, err := f.pipeline.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)
}

func TestIndexSupersededByReprocessDuringConnectivityCheck(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())

	// A reprocess that starts and finishes while Index is still probing
	// connectivity must void the run: the chunk set Index snapshotted no
	// longer matches what is stored.
	cfg := testConfig()
	cfg.Chunking.ChunkSize = 60
	f.embedder.pingHook = func() {
		f.embedder.pingHook = nil
		require.NoError(t, f.pipeline.Reprocess(context.Background(), doc.ID, cfg))
		waitForStatus(t, f, doc.ID, domain.StatusCompleted)
	}

	err := f.pipeline.Index(context.Background(), doc.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 0, f.vectors.upserts, "superseded index must not write vectors")

	got, err := f.pipeline.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Nil(t, got.IndexingStats)
	assert.Equal(t, 60, got.Config.Chunking.ChunkSize)

	// Indexing the reprocessed document records stats for the chunks that
	// are actually stored.
	require.NoError(t, f.pipeline.Index(context.Background(), doc.ID))
	got, err = f.pipeline.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)
	require.NotNil(t, got.IndexingStats)
	assert.Equal(t, len(got.Chunks), got.IndexingStats.ChunksCount)
	assert.Equal(t, 60, got.IndexingStats.ChunkSize)
	assert.Equal(t, 1, f.vectors.upserts)
}

func TestReprocessSupersedesInFlightRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	f.extractor.gate = gate
	f.extractor.started = started
	f.extractor.gated = true

	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)
	require.NoError(t, f.pipeline.Process(ctx, doc.ID, testConfig()))
	<-started

	// Supersede while the first run is blocked in extraction.
	cfg := testConfig()
	cfg.Chunking.ChunkSize = 200
	require.NoError(t, f.pipeline.Reprocess(ctx, doc.ID, cfg))

	got := waitForStatus(t, f, doc.ID, domain.StatusCompleted)
	assert.Equal(t, 200, got.Config.Chunking.ChunkSize)

	// Release the stale run; its result must be discarded.
	close(gate)
	time.Sleep(50 * time.Millisecond)
	got, err = f.pipeline.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 200, got.Config.Chunking.ChunkSize)
}

func TestReprocessInvalidBeforeFirstRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)

	assert.ErrorIs(t, f.pipeline.Reprocess(ctx, doc.ID, testConfig()), domain.ErrInvalidTransition)
}

func TestSubscribeReceivesStageEvents(t *testing.T) {
	f := newFixture(t)
	events := f.pipeline.Subscribe()

	doc := uploadAndProcess(t, f, testConfig())

	var seen []domain.EventType
	deadline := time.After(5 * time.Second)
	for len(seen) < 3 {
		select {
		case ev := <-events:
			if ev.DocumentID == doc.ID {
				seen = append(seen, ev.Type)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %v", seen)
		}
	}

	assert.Equal(t, []domain.EventType{
		domain.EventCleaningDone,
		domain.EventChunkingDone,
		domain.EventMetadataDone,
	}, seen)
}

func TestDeleteRemovesDocumentAndVectors(t *testing.T) {
	f := newFixture(t)
	doc := uploadAndProcess(t, f, testConfig())

	require.NoError(t, f.pipeline.Delete(context.Background(), doc.ID))

	_, err := f.pipeline.Get(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, f.vectors.deleted, doc.ID)
}

func TestCollaboratorsReportConnectivity(t *testing.T) {
	f := newFixture(t)
	status := f.pipeline.Collaborators(context.Background())
	assert.Equal(t, "connected", status.Embedder)
	assert.Equal(t, "connected", status.VectorStore)

	f.embedder.pingErr = errors.New("down")
	status = f.pipeline.Collaborators(context.Background())
	assert.Equal(t, "disconnected", status.Embedder)
}

func TestClosedPipelineRejectsWork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc, err := f.pipeline.Upload(ctx, "notes.txt", sampleText())
	require.NoError(t, err)

	require.NoError(t, f.pipeline.Close())

	_, err = f.pipeline.Upload(ctx, "more.txt", sampleText())
	assert.ErrorIs(t, err, domain.ErrPipelineClosed)
	assert.ErrorIs(t, f.pipeline.Process(ctx, doc.ID, testConfig()), domain.ErrPipelineClosed)
}

func TestListOrdersByCreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.pipeline.Upload(ctx, "a.txt", sampleText())
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := f.pipeline.Upload(ctx, "b.txt", sampleText())
	require.NoError(t, err)

	docs, err := f.pipeline.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
}

func TestRawBytesReturnsCopy(t *testing.T) {
	f := newFixture(t)
	doc, err := f.pipeline.Upload(context.Background(), "notes.txt", sampleText())
	require.NoError(t, err)

	raw, ok := f.pipeline.rawBytes(doc.ID)
	require.True(t, ok)
	raw[0] = '#'

	again, ok := f.pipeline.rawBytes(doc.ID)
	require.True(t, ok)
	assert.Equal(t, sampleText(), again, "callers must not be able to mutate the stored upload")
}
