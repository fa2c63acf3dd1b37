package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docforge/docforge/internal/chunker"
	"github.com/docforge/docforge/internal/cleaner"
	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
	"github.com/docforge/docforge/internal/core/ports/driving"
	"github.com/docforge/docforge/internal/logging"
	"github.com/docforge/docforge/internal/metadata"
)

// Defaults for the worker pool.
const (
	defaultWorkers    = 4
	defaultQueueDepth = 64
	eventBuffer       = 32
)

// Options tunes the lifecycle service.
type Options struct {
	// Workers bounds concurrent pipeline runs.
	Workers int

	// QueueDepth bounds the FIFO run queue.
	QueueDepth int

	// Defaults is the configuration applied when a caller supplies none.
	Defaults domain.ProcessConfig
}

// docState is the lifecycle-private state of one document: the raw upload
// bytes (extraction input) and the generation counter that invalidates
// superseded runs.
type docState struct {
	raw        []byte
	generation uint64
}

// job is one queued pipeline run. It carries the generation it was
// created under; a run whose generation has since advanced discards its
// result instead of overwriting the document with stale data.
type job struct {
	documentID string
	generation uint64
	cfg        domain.ProcessConfig
	reprocess  bool
}

// Lifecycle implements driving.DocumentPipeline.
type Lifecycle struct {
	log       logging.Logger
	cleaner   *cleaner.Cleaner
	splitter  *chunker.Splitter
	meta      *metadata.Extractor
	stats     *StatsAggregator
	registry  driven.ExtractorRegistry
	store     driven.DocumentStore
	embedder  driven.EmbeddingService
	vectors   driven.VectorStore
	defaults  domain.ProcessConfig

	mu     sync.Mutex
	docs   map[string]*docState
	closed bool

	queue  chan job
	stopCh chan struct{}
	wg     sync.WaitGroup

	subMu sync.Mutex
	subs  []chan domain.Event
}

var _ driving.DocumentPipeline = (*Lifecycle)(nil)

// NewLifecycle wires the pipeline and starts its workers. embedder and
// vectors may be nil; indexing then fails fast with ErrNotConnected.
func NewLifecycle(
	store driven.DocumentStore,
	registry driven.ExtractorRegistry,
	scorer driven.ConceptScorer,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	opts Options,
	log logging.Logger,
) *Lifecycle {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = defaultQueueDepth
	}
	if err := opts.Defaults.Validate(); err != nil {
		opts.Defaults = domain.DefaultProcessConfig()
	}

	l := &Lifecycle{
		log:      log.WithName("lifecycle"),
		cleaner:  cleaner.New(),
		splitter: chunker.New(log),
		meta:     metadata.NewExtractor(scorer, log),
		stats:    NewStatsAggregator(),
		registry: registry,
		store:    store,
		embedder: embedder,
		vectors:  vectors,
		defaults: opts.Defaults,
		docs:     make(map[string]*docState),
		queue:    make(chan job, opts.QueueDepth),
		stopCh:   make(chan struct{}),
	}

	l.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go l.worker()
	}
	return l
}

// Upload registers raw file bytes as a new document in the uploaded state.
func (l *Lifecycle) Upload(ctx context.Context, filename string, data []byte) (*domain.Document, error) {
	if l.registry.Get(filename) == nil {
		ext := strings.ToLower(filepath.Ext(filename))
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        "file-" + uuid.NewString(),
		Filename:  filepath.Base(filename),
		FileType:  strings.ToLower(filepath.Ext(filename)),
		FileSize:  int64(len(data)),
		Config:    l.defaults,
		Status:    domain.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, domain.ErrPipelineClosed
	}
	l.docs[doc.ID] = &docState{raw: append([]byte(nil), data...)}
	l.mu.Unlock()

	if err := l.store.Save(ctx, doc); err != nil {
		l.mu.Lock()
		delete(l.docs, doc.ID)
		l.mu.Unlock()
		return nil, err
	}

	l.log.Info("document uploaded", "id", doc.ID, "filename", doc.Filename, "bytes", doc.FileSize)
	return doc.Clone(), nil
}

// Process queues the first pipeline run for an uploaded document.
func (l *Lifecycle) Process(ctx context.Context, documentID string, cfg domain.ProcessConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status != domain.StatusUploaded {
		return fmt.Errorf("%w: process from %s", domain.ErrInvalidTransition, doc.Status)
	}

	gen, err := l.advance(ctx, documentID, domain.StatusPending)
	if err != nil {
		return err
	}
	return l.enqueue(job{documentID: documentID, generation: gen, cfg: cfg})
}

// Reprocess re-runs the pipeline from raw text with a new config,
// superseding any in-flight run for the document.
func (l *Lifecycle) Reprocess(ctx context.Context, documentID string, cfg domain.ProcessConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status == domain.StatusUploaded {
		return fmt.Errorf("%w: reprocess before first processing run", domain.ErrInvalidTransition)
	}
	if doc.Status.IsTerminal() && !doc.Status.CanTransition(domain.StatusReprocessing) {
		return fmt.Errorf("%w: reprocess from %s", domain.ErrInvalidTransition, doc.Status)
	}

	gen, err := l.advance(ctx, documentID, domain.StatusReprocessing)
	if err != nil {
		return err
	}
	return l.enqueue(job{documentID: documentID, generation: gen, cfg: cfg, reprocess: true})
}

// Retry re-queues a document that is in the error state. A document that
// never completed a run goes back through pending; one with prior results
// replays via reprocessing.
func (l *Lifecycle) Retry(ctx context.Context, documentID string) error {
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status != domain.StatusError {
		return fmt.Errorf("%w: retry from %s", domain.ErrInvalidTransition, doc.Status)
	}

	next := domain.StatusPending
	reprocess := false
	if doc.CleanedText != "" {
		next = domain.StatusReprocessing
		reprocess = true
	}
	gen, err := l.advance(ctx, documentID, next)
	if err != nil {
		return err
	}
	return l.enqueue(job{documentID: documentID, generation: gen, cfg: doc.Config, reprocess: reprocess})
}

// Index embeds the current chunk set and writes it to the vector store.
// Connectivity is probed first; an unreachable collaborator fails fast
// without touching document state. A transient failure mid-write reverts
// the document to completed so a retry skips re-cleaning and re-chunking.
func (l *Lifecycle) Index(ctx context.Context, documentID string) error {
	// Capture the generation before reading the snapshot: a reprocess that
	// lands at any later point bumps it and voids every commit below,
	// keeping stale chunks out of the vector store.
	gen := l.ensureState(documentID)

	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status != domain.StatusCompleted {
		return fmt.Errorf("%w: index from %s", domain.ErrInvalidTransition, doc.Status)
	}
	if l.embedder == nil || l.vectors == nil {
		return fmt.Errorf("%w: indexing collaborators not configured", domain.ErrNotConnected)
	}
	if err := l.embedder.Ping(ctx); err != nil {
		return fmt.Errorf("%w: embedding service: %v", domain.ErrNotConnected, err)
	}
	if err := l.vectors.Ping(ctx); err != nil {
		return fmt.Errorf("%w: vector store: %v", domain.ErrNotConnected, err)
	}

	if !l.commit(ctx, documentID, gen, func(d *domain.Document) {
		d.Status = domain.StatusIndexing
	}) {
		return fmt.Errorf("%w: document superseded", domain.ErrInvalidTransition)
	}

	texts := make([]string, len(doc.Chunks))
	for i, c := range doc.Chunks {
		texts[i] = c.Content
	}

	vectors, err := l.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) != len(texts) {
		err = fmt.Errorf("embedding count %d does not match chunk count %d", len(vectors), len(texts))
	}
	if err == nil {
		err = l.vectors.Upsert(ctx, documentID, doc.Chunks, vectors)
	}
	if err != nil {
		failure := fmt.Errorf("%w: %v", domain.ErrIndexingFailed, err)
		l.commit(ctx, documentID, gen, func(d *domain.Document) {
			d.Status = domain.StatusCompleted
			d.LastError = &domain.ErrorInfo{
				Kind:    domain.ErrorKindIndexing,
				Message: failure.Error(),
			}
		})
		l.publish(documentID, domain.EventRunFailed, domain.StatusCompleted, failure.Error())
		return failure
	}

	stats := l.stats.Aggregate(doc)
	if !l.commit(ctx, documentID, gen, func(d *domain.Document) {
		d.Status = domain.StatusIndexed
		d.IndexingStats = &stats
		d.LastError = nil
	}) {
		// A reprocess superseded the indexing result; the stored chunks
		// no longer match what was written.
		return nil
	}

	l.publish(documentID, domain.EventIndexingDone, domain.StatusIndexed, "")
	l.log.Info("document indexed", "id", documentID, "chunks", stats.ChunksCount, "tokens", stats.TotalTokens)
	return nil
}

// Get returns a consistent snapshot of a document.
func (l *Lifecycle) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return l.store.Get(ctx, documentID)
}

// List returns snapshots of all documents ordered by creation time.
func (l *Lifecycle) List(ctx context.Context) ([]domain.Document, error) {
	return l.store.List(ctx)
}

// Delete removes a document. Any in-flight run is superseded and its
// result discarded.
func (l *Lifecycle) Delete(ctx context.Context, documentID string) error {
	l.mu.Lock()
	if st, ok := l.docs[documentID]; ok {
		st.generation++
	}
	delete(l.docs, documentID)
	l.mu.Unlock()

	if err := l.store.Delete(ctx, documentID); err != nil {
		return err
	}
	if l.vectors != nil {
		if err := l.vectors.Delete(ctx, documentID); err != nil {
			l.log.Info("vector store delete failed", "id", documentID, "error", err)
		}
	}
	return nil
}

// Subscribe returns a channel of stage-completion events. Slow consumers
// drop events rather than blocking the pipeline.
func (l *Lifecycle) Subscribe() <-chan domain.Event {
	ch := make(chan domain.Event, eventBuffer)
	l.subMu.Lock()
	l.subs = append(l.subs, ch)
	l.subMu.Unlock()
	return ch
}

// Collaborators probes the embedding and vector-store services.
func (l *Lifecycle) Collaborators(ctx context.Context) driving.CollaboratorStatus {
	status := driving.CollaboratorStatus{
		Embedder:    "disconnected",
		VectorStore: "disconnected",
	}
	if l.embedder != nil && l.embedder.Ping(ctx) == nil {
		status.Embedder = "connected"
	}
	if l.vectors != nil && l.vectors.Ping(ctx) == nil {
		status.VectorStore = "connected"
	}
	return status
}

// Close drains queued runs and shuts the pipeline down.
func (l *Lifecycle) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	close(l.stopCh)
	l.wg.Wait()

	l.subMu.Lock()
	for _, ch := range l.subs {
		close(ch)
	}
	l.subs = nil
	l.subMu.Unlock()
	return nil
}

// advance bumps the document's generation, invalidating in-flight runs,
// and records the new status.
func (l *Lifecycle) advance(ctx context.Context, documentID string, next domain.DocumentStatus) (uint64, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0, domain.ErrPipelineClosed
	}
	st, ok := l.docs[documentID]
	if !ok {
		// Document loaded from a persistent store after a restart; raw
		// upload bytes are gone but the stored raw text still allows
		// reprocessing.
		st = &docState{}
		l.docs[documentID] = st
	}
	st.generation++
	gen := st.generation
	l.mu.Unlock()

	if !l.commit(ctx, documentID, gen, func(d *domain.Document) {
		d.Status = next
	}) {
		return 0, domain.ErrNotFound
	}
	return gen, nil
}

// enqueue adds a run to the FIFO queue, blocking when the pool is busy.
func (l *Lifecycle) enqueue(j job) error {
	select {
	case l.queue <- j:
		return nil
	case <-l.stopCh:
		return domain.ErrPipelineClosed
	}
}

func (l *Lifecycle) worker() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stopCh:
			for {
				select {
				case j := <-l.queue:
					l.run(j)
				default:
					return
				}
			}
		case j := <-l.queue:
			l.run(j)
		}
	}
}

// ensureState returns the document's current generation, creating
// lifecycle state for documents loaded from a persistent store.
func (l *Lifecycle) ensureState(documentID string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.docs[documentID]
	if !ok {
		st = &docState{}
		l.docs[documentID] = st
	}
	return st.generation
}

// generation returns the current generation for a document, or 0 when the
// document is unknown.
func (l *Lifecycle) generation(documentID string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.docs[documentID]; ok {
		return st.generation
	}
	return 0
}

// rawBytes returns a copy of the upload bytes for extraction.
func (l *Lifecycle) rawBytes(documentID string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.docs[documentID]
	if !ok || st.raw == nil {
		return nil, false
	}
	return append([]byte(nil), st.raw...), true
}

// commit applies a mutation to the stored document iff the generation is
// still current. It returns false when the run was superseded or the
// document vanished; the caller then drops its result.
func (l *Lifecycle) commit(ctx context.Context, documentID string, gen uint64, mutate func(*domain.Document)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.docs[documentID]
	if !ok || st.generation != gen {
		return false
	}
	doc, err := l.store.Get(ctx, documentID)
	if err != nil {
		return false
	}
	mutate(doc)
	doc.UpdatedAt = time.Now().UTC()
	if err := l.store.Save(ctx, doc); err != nil {
		l.log.Error(err, "document save failed", "id", documentID)
		return false
	}
	return true
}

// run executes one pipeline run: extract (first run only), clean, chunk,
// metadata. Stage completions update the stored snapshot and emit events;
// any stage error aborts the run and parks the document in error.
func (l *Lifecycle) run(j job) {
	ctx := context.Background()

	if l.generation(j.documentID) != j.generation {
		return
	}

	doc, err := l.store.Get(ctx, j.documentID)
	if err != nil {
		return
	}

	active := domain.StatusProcessing
	if j.reprocess {
		active = domain.StatusReprocessing
	}
	if !l.commit(ctx, j.documentID, j.generation, func(d *domain.Document) {
		d.Status = active
	}) {
		return
	}

	rawText := doc.RawText
	if rawText == "" {
		rawText, err = l.extract(ctx, doc)
		if err != nil {
			l.fail(ctx, j, err)
			return
		}
	}

	result := l.cleaner.Clean(rawText, j.cfg.Cleaning)
	if !l.commit(ctx, j.documentID, j.generation, func(d *domain.Document) {
		d.RawText = rawText
		d.CleanedText = result.Text
		d.CleaningStats = result.Stats
		d.Pages = result.Pages
	}) {
		return
	}
	l.publish(j.documentID, domain.EventCleaningDone, active, "")

	chunks, err := l.splitter.Split(result.Text, j.cfg.Chunking)
	if err != nil {
		l.fail(ctx, j, err)
		return
	}
	l.publish(j.documentID, domain.EventChunkingDone, active, "")

	meta, chunkMeta := l.meta.Extract(ctx, result.Text, chunks, result.Pages)
	for i := range chunks {
		chunks[i].Metadata = chunkMeta[i]
	}
	meta.CleaningStats = result.Stats

	if !l.commit(ctx, j.documentID, j.generation, func(d *domain.Document) {
		d.Chunks = chunks
		d.Metadata = meta
		d.Config = j.cfg
		d.IndexingStats = nil
		d.LastError = nil
		d.Status = domain.StatusCompleted
	}) {
		return
	}
	l.publish(j.documentID, domain.EventMetadataDone, domain.StatusCompleted, "")
	l.log.Info("document processed",
		"id", j.documentID,
		"chunks", len(chunks),
		"strategy", string(j.cfg.Chunking.Strategy),
		"reduction", result.Stats.ReductionPercentage)
}

// extract decodes the raw upload bytes through the registered extractor.
func (l *Lifecycle) extract(ctx context.Context, doc *domain.Document) (string, error) {
	raw, ok := l.rawBytes(doc.ID)
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: raw upload bytes unavailable", domain.ErrExtraction)
	}
	ext := l.registry.Get(doc.Filename)
	if ext == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, doc.FileType)
	}
	text, err := ext.Extract(ctx, raw, doc.Filename)
	if err != nil {
		return "", err
	}
	return text, nil
}

// fail parks the document in the error state with the originating kind.
func (l *Lifecycle) fail(ctx context.Context, j job, cause error) {
	info := domain.ErrorInfo{
		Kind:    domain.ErrorKindOf(cause),
		Message: cause.Error(),
	}
	l.commit(ctx, j.documentID, j.generation, func(d *domain.Document) {
		d.Status = domain.StatusError
		d.LastError = &info
	})
	l.publish(j.documentID, domain.EventRunFailed, domain.StatusError, info.Message)
	l.log.Info("pipeline run failed", "id", j.documentID, "kind", info.Kind, "error", info.Message)
}

// publish fans an event out to subscribers without blocking.
func (l *Lifecycle) publish(documentID string, typ domain.EventType, status domain.DocumentStatus, errMsg string) {
	ev := domain.Event{
		DocumentID: documentID,
		Type:       typ,
		Status:     status,
		Error:      errMsg,
		Timestamp:  time.Now().UTC(),
	}
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
