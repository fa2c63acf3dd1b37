package driven

import "context"

// Extractor decodes raw upload bytes into plain text.
// Each extractor handles specific file extensions (e.g., .pdf, .docx).
// Page boundaries, when the format knows them, are marked with form feed
// characters so the cleaner can segment pages without guessing.
type Extractor interface {
	// SupportedExtensions returns lower-cased extensions including the
	// dot that this extractor handles.
	SupportedExtensions() []string

	// Extract decodes the file bytes into text. Undecodable input fails
	// with an error wrapping domain.ErrExtraction.
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// ExtractorRegistry selects the extractor for an uploaded file.
type ExtractorRegistry interface {
	// Get retrieves the extractor for a filename's extension.
	// Returns nil when no extractor is registered for the type.
	Get(filename string) Extractor

	// Register registers an extractor for its supported extensions.
	Register(extractor Extractor)

	// List returns all registered extensions.
	List() []string
}
