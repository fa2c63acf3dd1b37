package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/docforge/docforge/internal/core/domain"
)

// documentRecord is the persistence shape of a document. The consumer-facing
// chunk encoding drops the index and text offsets, which the pipeline still
// needs after a restart, so snapshots carry their own chunk records.
type documentRecord struct {
	ID            string                  `json:"id"`
	Filename      string                  `json:"filename"`
	FileType      string                  `json:"file_type"`
	FileSize      int64                   `json:"file_size"`
	RawText       string                  `json:"raw_text"`
	CleanedText   string                  `json:"cleaned_text"`
	CleaningStats domain.CleaningStats    `json:"cleaning_stats"`
	Pages         domain.PageMap          `json:"pages,omitempty"`
	Chunks        []chunkRecord           `json:"chunks,omitempty"`
	Metadata      domain.DocumentMetadata `json:"metadata"`
	Config        domain.ProcessConfig    `json:"config"`
	IndexingStats *domain.IndexingStats   `json:"indexing_stats,omitempty"`
	Status        domain.DocumentStatus   `json:"status"`
	LastError     *domain.ErrorInfo       `json:"last_error,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

type chunkRecord struct {
	ID       string               `json:"id"`
	Index    int                  `json:"index"`
	Content  string               `json:"content"`
	Start    int                  `json:"start"`
	End      int                  `json:"end"`
	Metadata domain.ChunkMetadata `json:"metadata"`
}

func encode(doc *domain.Document) ([]byte, error) {
	rec := documentRecord{
		ID:            doc.ID,
		Filename:      doc.Filename,
		FileType:      doc.FileType,
		FileSize:      doc.FileSize,
		RawText:       doc.RawText,
		CleanedText:   doc.CleanedText,
		CleaningStats: doc.CleaningStats,
		Pages:         doc.Pages,
		Metadata:      doc.Metadata,
		Config:        doc.Config,
		IndexingStats: doc.IndexingStats,
		Status:        doc.Status,
		LastError:     doc.LastError,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if doc.Chunks != nil {
		rec.Chunks = make([]chunkRecord, len(doc.Chunks))
		for i, c := range doc.Chunks {
			rec.Chunks[i] = chunkRecord{
				ID:       c.ID,
				Index:    c.Index,
				Content:  c.Content,
				Start:    c.Start,
				End:      c.End,
				Metadata: c.Metadata,
			}
		}
	}

	snapshot, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	return snapshot, nil
}

func decode(snapshot []byte) (*domain.Document, error) {
	var rec documentRecord
	if err := json.Unmarshal(snapshot, &rec); err != nil {
		return nil, fmt.Errorf("decode document snapshot: %w", err)
	}

	doc := domain.Document{
		ID:            rec.ID,
		Filename:      rec.Filename,
		FileType:      rec.FileType,
		FileSize:      rec.FileSize,
		RawText:       rec.RawText,
		CleanedText:   rec.CleanedText,
		CleaningStats: rec.CleaningStats,
		Pages:         rec.Pages,
		Metadata:      rec.Metadata,
		Config:        rec.Config,
		IndexingStats: rec.IndexingStats,
		Status:        rec.Status,
		LastError:     rec.LastError,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
	if rec.Chunks != nil {
		doc.Chunks = make([]domain.Chunk, len(rec.Chunks))
		for i, c := range rec.Chunks {
			doc.Chunks[i] = domain.Chunk{
				ID:       c.ID,
				Index:    c.Index,
				Content:  c.Content,
				Start:    c.Start,
				End:      c.End,
				Metadata: c.Metadata,
			}
		}
	}
	return &doc, nil
}
