package services

import (
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/docforge/docforge/internal/core/domain"
)

// StatsAggregator folds the parameters and outcome of a processing run
// into the stats record attached after a successful vector-store write.
type StatsAggregator struct {
	enc *tiktoken.Tiktoken
}

// NewStatsAggregator returns an aggregator. Token counts use the
// cl100k_base encoding when available and fall back to whitespace word
// counting when the encoding cannot be loaded.
func NewStatsAggregator() *StatsAggregator {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &StatsAggregator{enc: enc}
}

// Aggregate builds the indexing stats for a document's current chunk set.
func (a *StatsAggregator) Aggregate(doc *domain.Document) domain.IndexingStats {
	total := 0
	for _, c := range doc.Chunks {
		total += a.CountTokens(c.Content)
	}
	return domain.IndexingStats{
		ChunksCount:       len(doc.Chunks),
		TotalTokens:       total,
		ChunkingStrategy:  doc.Config.Chunking.Strategy,
		ChunkSize:         doc.Config.Chunking.ChunkSize,
		ChunkOverlap:      doc.Config.Chunking.OverlapSize,
		CleaningApplied:   doc.Config.Cleaning.AnyEnabled(),
		CleanedPercentage: doc.CleaningStats.ReductionPercentage,
		Timestamp:         time.Now().UTC(),
	}
}

// CountTokens returns the token count of a text.
func (a *StatsAggregator) CountTokens(text string) int {
	if a.enc != nil {
		return len(a.enc.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}
