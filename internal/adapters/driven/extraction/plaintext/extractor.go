// Package plaintext extracts text from plain text uploads.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text and markdown files.
type Extractor struct{}

// New creates a plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".markdown"}
}

// Extract decodes the bytes as UTF-8 text.
func (e *Extractor) Extract(_ context.Context, data []byte, filename string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrExtraction, filename)
	}
	return string(data), nil
}
