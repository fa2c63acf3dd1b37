package domain

import "time"

// CleaningStats is the quantitative record of how much and what kind of
// noise the cleaner removed from raw text.
type CleaningStats struct {
	// OriginalLength is the raw text length in characters.
	OriginalLength int `json:"original_length"`

	// CleanedLength is the cleaned text length in characters.
	CleanedLength int `json:"cleaned_length"`

	// ReductionPercentage is 100*(1 - cleaned/original), rounded to two
	// decimals. Zero when the input was empty.
	ReductionPercentage float64 `json:"reduction_percentage"`

	// RemovedElements names the stages that actually deleted content.
	RemovedElements []string `json:"removed_elements"`
}

// Clone returns a deep copy of the stats.
func (s CleaningStats) Clone() CleaningStats {
	cp := s
	if s.RemovedElements != nil {
		cp.RemovedElements = append([]string(nil), s.RemovedElements...)
	}
	return cp
}

// Removed returns true when the named stage deleted content.
func (s CleaningStats) Removed(stage string) bool {
	for _, el := range s.RemovedElements {
		if el == stage {
			return true
		}
	}
	return false
}

// IndexingStats records the chunking/cleaning parameters and outcome,
// attached to a document after a successful vector-store write.
type IndexingStats struct {
	ChunksCount       int           `json:"chunks_count"`
	TotalTokens       int           `json:"total_tokens"`
	ChunkingStrategy  ChunkStrategy `json:"chunking_strategy"`
	ChunkSize         int           `json:"chunk_size"`
	ChunkOverlap      int           `json:"chunk_overlap"`
	CleaningApplied   bool          `json:"cleaning_applied"`
	CleanedPercentage float64       `json:"cleaned_percentage"`
	Timestamp         time.Time     `json:"timestamp"`
}
