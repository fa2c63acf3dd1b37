// Package extraction selects the text extractor for an uploaded file by
// its extension.
package extraction

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/docforge/docforge/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps lower-cased file extensions to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewRegistry creates a registry with the given extractors registered.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{extractors: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register registers an extractor for its supported extensions. A later
// registration for the same extension wins.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extractor.SupportedExtensions() {
		r.extractors[strings.ToLower(ext)] = extractor
	}
}

// Get retrieves the extractor for a filename's extension, or nil.
func (r *Registry) Get(filename string) driven.Extractor {
	ext := strings.ToLower(filepath.Ext(filename))
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extractors[ext]
}

// List returns all registered extensions, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
