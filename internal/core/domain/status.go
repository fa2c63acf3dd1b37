package domain

// DocumentStatus is the lifecycle state of a document in the pipeline.
type DocumentStatus string

// Lifecycle states.
const (
	// StatusUploaded means raw bytes were received but no run has started.
	StatusUploaded DocumentStatus = "uploaded"

	// StatusPending means a processing run is queued but not yet scheduled.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means the first clean/chunk/metadata run is executing.
	StatusProcessing DocumentStatus = "processing"

	// StatusCompleted means cleaned text, chunks and metadata are available.
	StatusCompleted DocumentStatus = "completed"

	// StatusReprocessing means a config-change replay is executing.
	StatusReprocessing DocumentStatus = "reprocessing"

	// StatusIndexing means chunks are being sent to the vector store.
	StatusIndexing DocumentStatus = "indexing"

	// StatusIndexed means the vector store acknowledged the chunk set.
	StatusIndexed DocumentStatus = "indexed"

	// StatusError means a run aborted; LastError carries the cause.
	StatusError DocumentStatus = "error"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusUploaded, StatusPending, StatusProcessing, StatusCompleted,
		StatusReprocessing, StatusIndexing, StatusIndexed, StatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true when no run is in flight for this status.
func (s DocumentStatus) IsTerminal() bool {
	switch s {
	case StatusUploaded, StatusCompleted, StatusIndexed, StatusError:
		return true
	default:
		return false
	}
}

// validTransitions encodes the lifecycle state machine. A reprocess request
// from completed or indexed re-enters the pipeline via reprocessing; indexed
// is reachable only from indexing, and error only from an active run.
var validTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploaded:     {StatusPending},
	StatusPending:      {StatusProcessing},
	StatusProcessing:   {StatusCompleted, StatusError},
	StatusCompleted:    {StatusReprocessing, StatusIndexing},
	StatusReprocessing: {StatusCompleted, StatusError},
	StatusIndexing:     {StatusIndexed, StatusCompleted, StatusError},
	StatusIndexed:      {StatusReprocessing},
	StatusError:        {StatusPending, StatusReprocessing},
}

// CanTransition returns true if the lifecycle permits moving to next.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
