package domain

import "time"

// EventType identifies a discrete pipeline stage completion. Consumers
// compute any progress display themselves; the pipeline emits no synthetic
// percentages.
type EventType string

// Stage completion events.
const (
	EventCleaningDone EventType = "cleaning-done"
	EventChunkingDone EventType = "chunking-done"
	EventMetadataDone EventType = "metadata-done"
	EventIndexingDone EventType = "indexing-done"
	EventRunFailed    EventType = "run-failed"
)

// Event is a notification emitted when a pipeline stage completes for a
// document.
type Event struct {
	// DocumentID identifies the document.
	DocumentID string

	// Type is the completed stage, or EventRunFailed.
	Type EventType

	// Status is the document status after the stage.
	Status DocumentStatus

	// Error is the failure message when Type is EventRunFailed.
	Error string

	// Timestamp is when the stage completed.
	Timestamp time.Time
}
