package chunker

import "github.com/docforge/docforge/internal/core/domain"

// paragraphChunks accumulates whole paragraphs until adding the next one
// would push the chunk past chunkSize. A chunk only closes once it holds
// at least minChunkSize characters, so a short paragraph rides along with
// its neighbours instead of becoming a fragment.
func paragraphChunks(text string, cfg domain.ChunkConfig) []span {
	paras := paragraphSpans(text)
	if len(paras) == 0 {
		return nil
	}

	var out []span
	cur := span{start: paras[0].start, end: paras[0].end}
	last := paras[0]

	for _, p := range paras[1:] {
		if p.end-cur.start > cfg.ChunkSize && cur.len() >= cfg.MinChunkSize {
			out = append(out, cur)
			cur = span{start: overlapStart(cur, last, p, cfg), end: p.end}
		} else {
			cur.end = p.end
		}
		last = p
	}
	out = append(out, cur)

	return splitOversize(out, cfg)
}

// overlapStart decides where the chunk after a close begins. With
// boundaries respected, the closing chunk's final paragraph is repeated
// in full, but only when it fits inside the overlap budget. Otherwise
// the overlap is a raw character count back from the previous end.
func overlapStart(closed, lastPara, next span, cfg domain.ChunkConfig) int {
	if cfg.OverlapSize == 0 {
		return next.start
	}
	if cfg.RespectBoundaries {
		if lastPara.len() <= cfg.OverlapSize {
			return lastPara.start
		}
		return next.start
	}
	if s := closed.end - cfg.OverlapSize; s > closed.start {
		return s
	}
	return next.start
}

// splitOversize breaks up any span a single outsized paragraph pushed
// past chunkSize+overlapSize, using the fixed window over just that
// span's byte range.
func splitOversize(spans []span, cfg domain.ChunkConfig) []span {
	limit := cfg.ChunkSize + cfg.OverlapSize
	out := make([]span, 0, len(spans))
	for _, sp := range spans {
		if sp.len() <= limit {
			out = append(out, sp)
			continue
		}
		out = append(out, fixedRange(sp.start, sp.end, cfg)...)
	}
	return out
}
