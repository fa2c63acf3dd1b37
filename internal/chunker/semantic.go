package chunker

import "github.com/docforge/docforge/internal/core/domain"

// semanticSpans cuts the text at scored natural boundaries. For each
// chunk it searches [pos+minChunkSize, pos+chunkSize] for the boundary
// nearest the chunkSize target, preferring headings over paragraph
// breaks over sentence ends on ties. A window with no boundary at all
// falls back to a hard cut at pos+chunkSize.
func semanticSpans(text string, cfg domain.ChunkConfig) []span {
	det := NewBoundaryDetector(text)
	var out []span

	pos := skipWhitespace(text, 0)
	for pos < len(text) {
		if len(text)-pos <= cfg.ChunkSize {
			out = append(out, trimEnd(text, span{start: pos, end: len(text)}))
			break
		}

		cut := pos + cfg.ChunkSize
		if b, ok := det.Best(pos+cfg.MinChunkSize, pos+cfg.ChunkSize, pos+cfg.ChunkSize); ok {
			cut = b.Offset
		}
		out = append(out, trimEnd(text, span{start: pos, end: cut}))

		next := nextStart(text, det, pos, cut, cfg)
		if next <= pos {
			next = skipWhitespace(text, cut)
		}
		pos = next
	}

	return mergeShortTail(out, cfg)
}

// nextStart positions the following chunk. Without overlap the next chunk
// starts at the first content after the cut. With overlap and boundaries
// respected the tail of the closed chunk is re-entered at the boundary
// nearest the full overlap distance; otherwise the overlap is a raw
// character count.
func nextStart(text string, det *BoundaryDetector, pos, cut int, cfg domain.ChunkConfig) int {
	if cfg.OverlapSize == 0 {
		return skipWhitespace(text, cut)
	}
	if !cfg.RespectBoundaries {
		return cut - cfg.OverlapSize
	}

	lo := cut - cfg.OverlapSize
	if lo <= pos {
		lo = pos + 1
	}
	if b, ok := det.Best(lo, cut-1, lo); ok {
		return skipWhitespace(text, b.Offset)
	}
	return skipWhitespace(text, cut)
}

// trimEnd shrinks a span's end past trailing whitespace.
func trimEnd(text string, sp span) span {
	for sp.end > sp.start {
		switch text[sp.end-1] {
		case ' ', '\t', '\n', '\r':
			sp.end--
		default:
			return sp
		}
	}
	return sp
}
