package driven

import (
	"context"

	"github.com/docforge/docforge/internal/core/domain"
)

// DocumentStore persists document snapshots between pipeline stages.
// The lifecycle service writes complete snapshots only: a reader never
// observes a half-updated chunk set. Backed by memory for ephemeral use
// or SQLite when artifacts should survive restarts.
type DocumentStore interface {
	// Save stores or replaces a document snapshot.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound when the ID is unknown.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents ordered by creation time.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, id string) error
}
