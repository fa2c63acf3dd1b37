package driven

import (
	"context"

	"github.com/docforge/docforge/internal/core/domain"
)

// VectorStore receives prepared chunks with their embeddings.
// This is an optional collaborator - when nil, indexing is disabled.
// Approximate nearest-neighbour search happens entirely inside the store;
// the pipeline only writes.
type VectorStore interface {
	// Upsert replaces the stored chunk set for a document with the given
	// chunks and vectors. Vectors are positionally aligned with chunks.
	Upsert(ctx context.Context, documentID string, chunks []domain.Chunk, vectors [][]float32) error

	// Delete removes every stored chunk for a document.
	Delete(ctx context.Context, documentID string) error

	// Ping validates the store is reachable and authenticated.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
