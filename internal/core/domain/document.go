package domain

import "time"

// Document is the aggregate root tracking one uploaded document through the
// preparation pipeline. It is owned exclusively by the lifecycle service;
// no other component retains a mutable reference. All reads go through
// snapshots so a half-updated chunk set is never visible.
type Document struct {
	// ID is the opaque identifier, immutable after creation.
	ID string

	// Filename is the original upload name.
	Filename string

	// FileType is the lower-cased extension including the dot (".pdf").
	FileType string

	// FileSize is the raw upload size in bytes.
	FileSize int64

	// RawText is the extracted text before cleaning.
	RawText string

	// CleanedText is the output of the cleaning stages. Chunk offsets
	// index into this string.
	CleanedText string

	// CleaningStats records what the cleaner removed.
	CleaningStats CleaningStats

	// Pages maps cleaned-text offsets to page numbers.
	Pages PageMap

	// Chunks is the current chunk set. Replaced wholesale on every
	// (re)processing run; chunks are never mutated in place.
	Chunks []Chunk

	// Metadata is the document-level metadata from the last run.
	Metadata DocumentMetadata

	// Config is the configuration of the most recently completed run.
	Config ProcessConfig

	// IndexingStats is set once a vector-store write succeeds, and
	// cleared again by reprocessing.
	IndexingStats *IndexingStats

	// Status is the lifecycle state.
	Status DocumentStatus

	// LastError records the most recent failure, if any.
	LastError *ErrorInfo

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time
}

// Clone returns a deep copy safe to hand out as a snapshot.
func (d *Document) Clone() *Document {
	cp := *d
	if d.Chunks != nil {
		cp.Chunks = make([]Chunk, len(d.Chunks))
		for i := range d.Chunks {
			cp.Chunks[i] = d.Chunks[i].Clone()
		}
	}
	if d.Pages != nil {
		cp.Pages = make(PageMap, len(d.Pages))
		copy(cp.Pages, d.Pages)
	}
	cp.Metadata = d.Metadata.Clone()
	cp.CleaningStats = d.CleaningStats.Clone()
	if d.IndexingStats != nil {
		stats := *d.IndexingStats
		cp.IndexingStats = &stats
	}
	if d.LastError != nil {
		lastErr := *d.LastError
		cp.LastError = &lastErr
	}
	return &cp
}

// Chunk is a contiguous, bounded slice of cleaned document text produced
// for downstream embedding. Within one document chunks are totally ordered
// by Index, which equals ascending Start offset.
type Chunk struct {
	// ID is stable within the document's current chunk set.
	ID string `json:"id"`

	// Index is the ordinal position within the document.
	Index int `json:"-"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Start is the inclusive offset into the cleaned text.
	Start int `json:"-"`

	// End is the exclusive offset into the cleaned text.
	End int `json:"-"`

	// Metadata carries the chunk-level fields for consumers.
	Metadata ChunkMetadata `json:"metadata"`
}

// Clone returns a deep copy of the chunk.
func (c Chunk) Clone() Chunk {
	cp := c
	if c.Metadata.KeyConcepts != nil {
		cp.Metadata.KeyConcepts = append([]string(nil), c.Metadata.KeyConcepts...)
	}
	return cp
}

// ChunkMetadata is the per-chunk metadata exposed to consumers. Fields are
// optional: a failed or inapplicable extraction omits the field rather than
// failing the run.
type ChunkMetadata struct {
	// PageRange is "N" or "N-M" over the pages the chunk spans.
	PageRange string `json:"page_range,omitempty"`

	// Section is the title of the nearest heading at or before the
	// chunk's start offset.
	Section string `json:"section,omitempty"`

	// KeyConcepts are the document-level concepts whose surface form
	// occurs within this chunk.
	KeyConcepts []string `json:"key_concepts,omitempty"`
}

// Heading is a structural title found in the cleaned text.
type Heading struct {
	// Title is the heading line, trimmed.
	Title string `json:"title"`

	// StartOffset is the position of the heading in the cleaned text.
	StartOffset int `json:"start_offset"`
}

// DocumentStructure describes the chapter/section skeleton of a document.
type DocumentStructure struct {
	// HasTOC is true when a table-of-contents marker was found.
	HasTOC bool `json:"has_toc,omitempty"`

	// Chapters are top-level titles in document order.
	Chapters []Heading `json:"chapters,omitempty"`

	// Sections are second-level titles in document order.
	Sections []Heading `json:"sections,omitempty"`
}

// DocumentMetadata is the document-level metadata record. Every field
// except CleaningStats is best-effort: extraction failures omit the field.
type DocumentMetadata struct {
	// Language is the best-guess language tag ("en", "fr", ...).
	Language string `json:"language,omitempty"`

	// Concepts are key phrases ranked by the concept scorer.
	Concepts []string `json:"concepts,omitempty"`

	// Authors are name strings in document order.
	Authors []string `json:"authors,omitempty"`

	// Structure is the detected chapter/section skeleton.
	Structure *DocumentStructure `json:"document_structure,omitempty"`

	// CleaningStats records the cleaning outcome for this run.
	CleaningStats CleaningStats `json:"cleaning_stats"`
}

// Clone returns a deep copy of the metadata.
func (m DocumentMetadata) Clone() DocumentMetadata {
	cp := m
	if m.Concepts != nil {
		cp.Concepts = append([]string(nil), m.Concepts...)
	}
	if m.Authors != nil {
		cp.Authors = append([]string(nil), m.Authors...)
	}
	if m.Structure != nil {
		structure := DocumentStructure{HasTOC: m.Structure.HasTOC}
		structure.Chapters = append([]Heading(nil), m.Structure.Chapters...)
		structure.Sections = append([]Heading(nil), m.Structure.Sections...)
		cp.Structure = &structure
	}
	cp.CleaningStats = m.CleaningStats.Clone()
	return cp
}
