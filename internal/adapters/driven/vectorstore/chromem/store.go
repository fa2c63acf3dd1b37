// Package chromem provides a vector store adapter backed by the embedded
// chromem-go database. Vectors are computed upstream by the embedding
// service; the store only persists and deletes them.
package chromem

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultCollection is the collection chunks are written to.
const DefaultCollection = "documents"

// Config holds configuration for the chromem store.
type Config struct {
	// Path is the on-disk location of the database. Empty means a purely
	// in-memory store.
	Path string

	// Collection overrides the default collection name.
	Collection string
}

// Store writes prepared chunks and their embeddings to chromem.
type Store struct {
	mu         sync.Mutex
	db         *chromemgo.DB
	collection string
}

// embeddingFunc is required by chromem for query-time embedding. All
// vectors here are precomputed, so it only guards against misuse.
func embeddingFunc(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("chromem store holds precomputed embeddings only")
}

// NewStore opens or creates the database.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	var db *chromemgo.DB
	if cfg.Path == "" {
		db = chromemgo.NewDB()
	} else {
		var err error
		db, err = chromemgo.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}
	return &Store{db: db, collection: cfg.Collection}, nil
}

// Upsert replaces the stored chunk set for a document. Existing entries
// for the document are deleted first so a reprocessed document never
// leaves stale chunks behind.
func (s *Store) Upsert(ctx context.Context, documentID string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk count %d does not match vector count %d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.db.GetOrCreateCollection(s.collection, nil, embeddingFunc)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	if err := coll.Delete(ctx, map[string]string{"document_id": documentID}, nil); err != nil {
		return fmt.Errorf("clear previous chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromemgo.Document, len(chunks))
	for i, c := range chunks {
		meta := map[string]string{"document_id": documentID}
		if c.Metadata.PageRange != "" {
			meta["page_range"] = c.Metadata.PageRange
		}
		if c.Metadata.Section != "" {
			meta["section"] = c.Metadata.Section
		}
		docs[i] = chromemgo.Document{
			ID:        documentID + "/" + c.ID,
			Content:   c.Content,
			Metadata:  meta,
			Embedding: vectors[i],
		}
	}
	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Delete removes every stored chunk for a document.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.db.GetCollection(s.collection, embeddingFunc)
	if coll == nil {
		return nil
	}
	return coll.Delete(ctx, map[string]string{"document_id": documentID}, nil)
}

// Ping reports readiness. The database is embedded, so reachability only
// fails when the store was never opened.
func (s *Store) Ping(context.Context) error {
	if s.db == nil {
		return fmt.Errorf("chromem db not initialised")
	}
	return nil
}

// Close releases resources. chromem persists on write, so there is
// nothing to flush.
func (s *Store) Close() error {
	return nil
}
