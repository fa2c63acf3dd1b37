package domain

import "fmt"

// ChunkStrategy selects how cleaned text is split into chunks.
type ChunkStrategy string

// Available chunking strategies.
const (
	// StrategyFixed uses a sliding window of chunkSize characters with a
	// stride of chunkSize-overlapSize.
	StrategyFixed ChunkStrategy = "fixed"

	// StrategyParagraph accumulates whole paragraphs up to chunkSize.
	StrategyParagraph ChunkStrategy = "paragraph"

	// StrategySemantic cuts at scored boundaries (heading > paragraph >
	// sentence) nearest the chunkSize target.
	StrategySemantic ChunkStrategy = "semantic"
)

// IsValid returns true if the strategy is recognised.
func (s ChunkStrategy) IsValid() bool {
	switch s {
	case StrategyFixed, StrategyParagraph, StrategySemantic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ChunkStrategy) String() string {
	return string(s)
}

// ChunkConfig holds the parameters of one chunking run.
type ChunkConfig struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int `json:"chunk_size" toml:"chunk_size"`

	// OverlapSize is the number of characters repeated between
	// consecutive chunks.
	OverlapSize int `json:"overlap_size" toml:"overlap_size"`

	// MinChunkSize is the smallest chunk the splitter may emit, except
	// possibly for the final chunk of a document.
	MinChunkSize int `json:"min_chunk_size" toml:"min_chunk_size"`

	// RespectBoundaries keeps overlap cuts on natural boundaries for the
	// paragraph and semantic strategies.
	RespectBoundaries bool `json:"respect_boundaries" toml:"respect_boundaries"`

	// Strategy selects the splitting algorithm.
	Strategy ChunkStrategy `json:"strategy" toml:"strategy"`
}

// DefaultChunkConfig returns the pipeline defaults used when a caller
// supplies no explicit configuration.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize:         800,
		OverlapSize:       100,
		MinChunkSize:      200,
		RespectBoundaries: true,
		Strategy:          StrategySemantic,
	}
}

// Validate rejects configurations that would violate chunk invariants.
// It runs before any chunk is produced; a failed validation never leaves
// a partially chunked document behind.
func (c ChunkConfig) Validate() error {
	if !c.Strategy.IsValid() {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	if c.MinChunkSize <= 0 {
		return fmt.Errorf("%w: min chunk size %d must be positive", ErrInvalidConfig, c.MinChunkSize)
	}
	if c.ChunkSize <= c.MinChunkSize {
		return fmt.Errorf("%w: chunk size %d must exceed min chunk size %d",
			ErrInvalidConfig, c.ChunkSize, c.MinChunkSize)
	}
	if c.OverlapSize < 0 || c.OverlapSize >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, chunk size %d)",
			ErrInvalidConfig, c.OverlapSize, c.ChunkSize)
	}
	return nil
}

// CleaningConfig toggles the individual cleaning stages. Stages always run
// in a fixed order; a disabled stage is skipped entirely.
type CleaningConfig struct {
	RemoveHeaders         bool `json:"remove_headers" toml:"remove_headers"`
	RemoveFooters         bool `json:"remove_footers" toml:"remove_footers"`
	RemovePageNumbers     bool `json:"remove_page_numbers" toml:"remove_page_numbers"`
	RemoveExtraWhitespace bool `json:"remove_extra_whitespace" toml:"remove_extra_whitespace"`
	NormalizeQuotes       bool `json:"normalize_quotes" toml:"normalize_quotes"`
	FixHyphenation        bool `json:"fix_hyphenation" toml:"fix_hyphenation"`
}

// DefaultCleaningConfig enables every cleaning stage.
func DefaultCleaningConfig() CleaningConfig {
	return CleaningConfig{
		RemoveHeaders:         true,
		RemoveFooters:         true,
		RemovePageNumbers:     true,
		RemoveExtraWhitespace: true,
		NormalizeQuotes:       true,
		FixHyphenation:        true,
	}
}

// AnyEnabled returns true when at least one cleaning stage is on.
func (c CleaningConfig) AnyEnabled() bool {
	return c.RemoveHeaders || c.RemoveFooters || c.RemovePageNumbers ||
		c.RemoveExtraWhitespace || c.NormalizeQuotes || c.FixHyphenation
}

// ProcessConfig bundles the run parameters handed to the pipeline.
type ProcessConfig struct {
	Chunking ChunkConfig    `json:"chunking" toml:"chunking"`
	Cleaning CleaningConfig `json:"cleaning" toml:"cleaning"`
}

// DefaultProcessConfig returns the default run parameters.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		Chunking: DefaultChunkConfig(),
		Cleaning: DefaultCleaningConfig(),
	}
}

// Validate checks every sub-config.
func (c ProcessConfig) Validate() error {
	return c.Chunking.Validate()
}
