package driving

import (
	"context"

	"github.com/docforge/docforge/internal/core/domain"
)

// DocumentPipeline is the entry point for document preparation. It owns
// every Document aggregate and runs the clean -> chunk -> metadata pipeline
// under the lifecycle state machine.
type DocumentPipeline interface {
	// Upload registers raw file bytes and returns the new document in the
	// uploaded state. Extraction runs during Process, not here.
	Upload(ctx context.Context, filename string, data []byte) (*domain.Document, error)

	// Process queues the first pipeline run for an uploaded document.
	// The config is validated synchronously; an invalid config is
	// rejected without changing document state.
	Process(ctx context.Context, documentID string, cfg domain.ProcessConfig) error

	// Reprocess re-runs the pipeline from raw text with a new config.
	// It supersedes any in-flight run for the same document and always
	// lands on completed, never indexed, even for indexed documents.
	Reprocess(ctx context.Context, documentID string, cfg domain.ProcessConfig) error

	// Retry re-queues a document that is in the error state.
	Retry(ctx context.Context, documentID string) error

	// Index embeds the chunk set and sends it to the vector store.
	// Valid only from completed. Connectivity is probed first: an
	// unreachable collaborator fails fast with domain.ErrNotConnected
	// and leaves the document untouched.
	Index(ctx context.Context, documentID string) error

	// Get returns a consistent snapshot of a document.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns snapshots of all documents ordered by creation time.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document. An in-flight run for it is superseded
	// and its result discarded.
	Delete(ctx context.Context, documentID string) error

	// Subscribe returns a channel of stage-completion events. The channel
	// is closed when the pipeline shuts down. Slow consumers drop events
	// rather than blocking the pipeline.
	Subscribe() <-chan domain.Event

	// Collaborators probes the embedding and vector-store services.
	Collaborators(ctx context.Context) CollaboratorStatus

	// Close drains queued runs and shuts the pipeline down.
	Close() error
}

// CollaboratorStatus reports connectivity of the external indexing
// collaborators, mirroring their Ping probes.
type CollaboratorStatus struct {
	// Embedder is "connected" or "disconnected".
	Embedder string

	// VectorStore is "connected" or "disconnected".
	VectorStore string
}
