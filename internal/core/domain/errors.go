package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrExtraction indicates the upstream extractor could not decode the
	// raw bytes. Fatal to the run; the document enters the error state.
	ErrExtraction = errors.New("text extraction failed")

	// ErrInvalidConfig indicates an invalid chunking or cleaning
	// configuration. Rejected before any work starts; document state is
	// unchanged.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotConnected indicates the embedding or vector-store collaborator
	// is unreachable or unauthenticated. Surfaced distinctly from
	// mid-operation failures.
	ErrNotConnected = errors.New("service not connected")

	// ErrIndexingFailed indicates a transient failure while sending chunks
	// to the vector store. Retryable: the document reverts to completed so
	// a retry does not re-clean or re-chunk.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrInvalidTransition indicates an operation was requested in a
	// lifecycle state that does not permit it.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrUnsupportedType indicates no extractor is registered for the
	// uploaded file type.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrPipelineClosed indicates the pipeline is shutting down and no
	// longer accepts work.
	ErrPipelineClosed = errors.New("pipeline closed")
)

// Error kinds recorded on a document after a failed run.
const (
	ErrorKindExtraction = "extraction"
	ErrorKindConfig     = "config"
	ErrorKindConnection = "connection"
	ErrorKindIndexing   = "indexing"
	ErrorKindInternal   = "internal"
)

// ErrorInfo is the queryable record of the last failure attached to a
// document. It is never dropped silently: every aborted run writes one.
type ErrorInfo struct {
	// Kind is one of the ErrorKind constants.
	Kind string `json:"kind"`

	// Message is the human-readable cause.
	Message string `json:"message"`
}

// ErrorKindOf maps an error to the kind recorded on the document.
func ErrorKindOf(err error) string {
	switch {
	case errors.Is(err, ErrExtraction), errors.Is(err, ErrUnsupportedType):
		return ErrorKindExtraction
	case errors.Is(err, ErrInvalidConfig):
		return ErrorKindConfig
	case errors.Is(err, ErrNotConnected):
		return ErrorKindConnection
	case errors.Is(err, ErrIndexingFailed):
		return ErrorKindIndexing
	default:
		return ErrorKindInternal
	}
}
