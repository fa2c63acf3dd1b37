package chunker

import "github.com/docforge/docforge/internal/core/domain"

// fixedSpans slides a chunkSize window over the whole text with a stride
// of chunkSize-overlapSize.
func fixedSpans(text string, cfg domain.ChunkConfig) []span {
	return fixedRange(0, len(text), cfg)
}

// fixedRange applies the sliding window to the half-open byte range
// [start, end). The final window absorbs the remainder; a remainder
// shorter than minChunkSize is merged into the previous window when the
// merged span stays within chunkSize+overlapSize.
func fixedRange(start, end int, cfg domain.ChunkConfig) []span {
	stride := cfg.ChunkSize - cfg.OverlapSize
	var out []span
	for pos := start; pos < end; pos += stride {
		if pos+cfg.ChunkSize >= end {
			out = append(out, span{start: pos, end: end})
			break
		}
		out = append(out, span{start: pos, end: pos + cfg.ChunkSize})
	}
	return mergeShortTail(out, cfg)
}

// mergeShortTail folds a final span shorter than minChunkSize into its
// predecessor, provided the merged span does not exceed
// chunkSize+overlapSize. Otherwise the short tail is kept: the last chunk
// of a document is the one place the minimum does not bind.
func mergeShortTail(spans []span, cfg domain.ChunkConfig) []span {
	n := len(spans)
	if n < 2 || spans[n-1].len() >= cfg.MinChunkSize {
		return spans
	}
	merged := span{start: spans[n-2].start, end: spans[n-1].end}
	if merged.len() > cfg.ChunkSize+cfg.OverlapSize {
		return spans
	}
	spans[n-2] = merged
	return spans[:n-1]
}
