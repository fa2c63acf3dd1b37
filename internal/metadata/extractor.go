package metadata

import (
	"context"
	"sort"
	"strings"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
	"github.com/docforge/docforge/internal/logging"
)

// conceptLimit caps the document-level concept list.
const conceptLimit = 5

// Extractor derives document- and chunk-level metadata. The concept
// scorer is optional; without one (or when it fails) the concepts and
// key_concepts fields are simply omitted.
type Extractor struct {
	scorer driven.ConceptScorer
	log    logging.Logger
}

// NewExtractor returns a metadata extractor. scorer may be nil.
func NewExtractor(scorer driven.ConceptScorer, log logging.Logger) *Extractor {
	return &Extractor{scorer: scorer, log: log.WithName("metadata")}
}

// Extract computes document metadata and one ChunkMetadata per chunk, in
// chunk order. The scorer runs once over the whole text; per-chunk key
// concepts are the document concepts whose surface form occurs in the
// chunk. Field failures are absorbed: the run always succeeds.
func (e *Extractor) Extract(ctx context.Context, cleanedText string, chunks []domain.Chunk, pages domain.PageMap) (domain.DocumentMetadata, []domain.ChunkMetadata) {
	meta := domain.DocumentMetadata{
		Language:  DetectLanguage(cleanedText),
		Authors:   ExtractAuthors(cleanedText),
		Structure: DetectStructure(cleanedText),
	}

	if e.scorer != nil {
		concepts, err := e.scorer.Score(ctx, cleanedText, conceptLimit)
		if err != nil {
			e.log.Info("concept scoring failed, omitting concepts", "error", err)
		} else {
			meta.Concepts = concepts
		}
	}

	headings := orderedHeadings(meta.Structure)
	lowered := make([]string, len(meta.Concepts))
	for i, c := range meta.Concepts {
		lowered[i] = strings.ToLower(c)
	}

	chunkMeta := make([]domain.ChunkMetadata, len(chunks))
	for i, chunk := range chunks {
		cm := domain.ChunkMetadata{
			PageRange: pages.RangeString(chunk.Start, chunk.End),
			Section:   sectionFor(headings, chunk.Start),
		}
		content := strings.ToLower(chunk.Content)
		for j, lc := range lowered {
			if strings.Contains(content, lc) {
				cm.KeyConcepts = append(cm.KeyConcepts, meta.Concepts[j])
			}
		}
		chunkMeta[i] = cm
	}
	return meta, chunkMeta
}

// orderedHeadings flattens chapters and sections into one slice sorted by
// start offset, for nearest-preceding-heading lookups.
func orderedHeadings(s *domain.DocumentStructure) []domain.Heading {
	if s == nil {
		return nil
	}
	headings := make([]domain.Heading, 0, len(s.Chapters)+len(s.Sections))
	headings = append(headings, s.Chapters...)
	headings = append(headings, s.Sections...)
	sort.Slice(headings, func(i, j int) bool {
		return headings[i].StartOffset < headings[j].StartOffset
	})
	return headings
}

// sectionFor returns the title of the nearest heading at or before the
// offset, or "" when none precedes it.
func sectionFor(headings []domain.Heading, offset int) string {
	idx := sort.Search(len(headings), func(i int) bool {
		return headings[i].StartOffset > offset
	})
	if idx == 0 {
		return ""
	}
	return headings[idx-1].Title
}
