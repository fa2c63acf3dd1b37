package chunker

import (
	"fmt"
	"strings"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/logging"
)

// Splitter divides cleaned text into chunks according to a ChunkConfig.
// Splitting is pure: the same text and config always yield the same
// chunks, byte ranges included.
type Splitter struct {
	log logging.Logger
}

// New returns a Splitter.
func New(log logging.Logger) *Splitter {
	return &Splitter{log: log.WithName("chunker")}
}

// Split validates the config and dispatches to the configured strategy.
// Empty or whitespace-only text yields no chunks. Every returned chunk
// has non-blank content, and any text between consecutive chunks is
// whitespace only.
func (s *Splitter) Split(text string, cfg domain.ChunkConfig) ([]domain.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var spans []span
	switch cfg.Strategy {
	case domain.StrategyFixed:
		spans = fixedSpans(text, cfg)
	case domain.StrategyParagraph:
		spans = paragraphChunks(text, cfg)
	case domain.StrategySemantic:
		spans = semanticSpans(text, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidConfig, cfg.Strategy)
	}

	chunks := toChunks(text, spans)
	s.log.Debug("text chunked",
		"strategy", string(cfg.Strategy),
		"chunks", len(chunks),
		"textLength", len(text))
	return chunks, nil
}

// toChunks materializes spans into chunks with sequential indices and
// deterministic IDs. Spans reduced to whitespace are dropped; indices
// stay dense after dropping.
func toChunks(text string, spans []span) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(spans))
	for _, sp := range spans {
		content := text[sp.start:sp.end]
		if strings.TrimSpace(content) == "" {
			continue
		}
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:      fmt.Sprintf("chunk-%d", idx),
			Index:   idx,
			Content: content,
			Start:   sp.start,
			End:     sp.end,
		})
	}
	return chunks
}

// skipWhitespace advances offset past spaces, tabs and newlines.
func skipWhitespace(text string, offset int) int {
	for offset < len(text) {
		switch text[offset] {
		case ' ', '\t', '\n', '\r':
			offset++
		default:
			return offset
		}
	}
	return offset
}
