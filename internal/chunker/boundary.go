package chunker

import (
	"regexp"
	"sort"
	"strings"
)

// BoundaryKind classifies a candidate split point. Higher values win ties.
type BoundaryKind int

// Boundary kinds in ascending priority.
const (
	KindSentence BoundaryKind = iota + 1
	KindParagraph
	KindHeading
)

// String returns the kind name.
func (k BoundaryKind) String() string {
	switch k {
	case KindSentence:
		return "sentence"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	default:
		return "unknown"
	}
}

// Boundary is a candidate cut position in cleaned text. Offset is where
// the previous chunk would end; the next chunk starts at the following
// content.
type Boundary struct {
	Offset int
	Kind   BoundaryKind
}

// headingPattern matches numbered or labelled heading lines.
var headingPattern = regexp.MustCompile(`(?i)^(chapter|chapitre)\s+\d+|^\d+(\.\d+)*\.?\s+\S|^[IVXLC]+\.\s+\S`)

// maxHeadingLen is the longest line still considered a heading candidate.
const maxHeadingLen = 100

// BoundaryDetector finds candidate split points in a fixed text. All
// boundaries are precomputed at construction; detection is deterministic.
type BoundaryDetector struct {
	boundaries []Boundary
	paras      []span
}

// NewBoundaryDetector scans the text for sentence ends, paragraph breaks
// and headings.
func NewBoundaryDetector(text string) *BoundaryDetector {
	d := &BoundaryDetector{paras: paragraphSpans(text)}

	// Paragraph breaks cut at the content end of each paragraph except
	// the last. A paragraph that looks like a heading instead yields a
	// heading boundary at the same position, so a cut there pushes the
	// heading into the next chunk.
	for i, p := range d.paras {
		if i+1 >= len(d.paras) {
			break
		}
		kind := KindParagraph
		if isHeadingParagraph(text[d.paras[i+1].start:d.paras[i+1].end]) {
			kind = KindHeading
		}
		d.boundaries = append(d.boundaries, Boundary{Offset: p.end, Kind: kind})
	}

	// Sentence ends cut just after terminal punctuation followed by
	// whitespace.
	for i := 0; i+1 < len(text); i++ {
		ch := text[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}
		next := text[i+1]
		if next == ' ' || next == '\n' || next == '\t' {
			d.boundaries = append(d.boundaries, Boundary{Offset: i + 1, Kind: KindSentence})
		}
	}

	sort.Slice(d.boundaries, func(i, j int) bool {
		if d.boundaries[i].Offset != d.boundaries[j].Offset {
			return d.boundaries[i].Offset < d.boundaries[j].Offset
		}
		return d.boundaries[i].Kind > d.boundaries[j].Kind
	})
	return d
}

// Candidates returns the boundaries with lo <= Offset <= hi.
func (d *BoundaryDetector) Candidates(lo, hi int) []Boundary {
	first := sort.Search(len(d.boundaries), func(i int) bool {
		return d.boundaries[i].Offset >= lo
	})
	var out []Boundary
	for i := first; i < len(d.boundaries) && d.boundaries[i].Offset <= hi; i++ {
		out = append(out, d.boundaries[i])
	}
	return out
}

// Best picks the candidate in [lo, hi] nearest the target offset. Ties on
// distance are resolved by kind priority, then by the earlier offset so
// the choice is total and deterministic.
func (d *BoundaryDetector) Best(lo, hi, target int) (Boundary, bool) {
	candidates := d.Candidates(lo, hi)
	if len(candidates) == 0 {
		return Boundary{}, false
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		bd, cd := distance(best.Offset, target), distance(cand.Offset, target)
		switch {
		case cd < bd:
			best = cand
		case cd == bd && cand.Kind > best.Kind:
			best = cand
		}
	}
	return best, true
}

// ParagraphStartBefore returns the start offset of the last paragraph
// beginning at or before offset, and false when none exists.
func (d *BoundaryDetector) ParagraphStartBefore(offset int) (int, bool) {
	idx := sort.Search(len(d.paras), func(i int) bool {
		return d.paras[i].start > offset
	})
	if idx == 0 {
		return 0, false
	}
	return d.paras[idx-1].start, true
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// isHeadingParagraph reports whether a paragraph reads like a heading:
// a single short line without terminal sentence punctuation, or one that
// matches a structural numbering pattern.
func isHeadingParagraph(content string) bool {
	if strings.Contains(content, "\n") {
		return false
	}
	line := strings.TrimSpace(content)
	if line == "" || len(line) >= maxHeadingLen {
		return false
	}
	if headingPattern.MatchString(line) {
		return true
	}
	last := line[len(line)-1]
	return last != '.' && last != '!' && last != '?'
}

// span is a half-open [start, end) range into the text.
type span struct {
	start, end int
}

func (s span) len() int { return s.end - s.start }

// paragraphSpans returns the content ranges of paragraphs: maximal runs of
// non-blank lines, with surrounding whitespace excluded.
func paragraphSpans(text string) []span {
	var paras []span
	offset := 0
	current := span{start: -1}

	flush := func() {
		if current.start >= 0 {
			paras = append(paras, current)
			current = span{start: -1}
		}
	}

	for offset <= len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		end := offset + lineEnd
		if lineEnd < 0 {
			end = len(text)
		}
		line := text[offset:end]

		if strings.TrimSpace(line) == "" {
			flush()
		} else {
			// Extend to the content end of this line, skipping
			// trailing spaces but keeping interior ones.
			contentEnd := end
			for contentEnd > offset && (text[contentEnd-1] == ' ' || text[contentEnd-1] == '\t') {
				contentEnd--
			}
			contentStart := offset
			for contentStart < contentEnd && (text[contentStart] == ' ' || text[contentStart] == '\t') {
				contentStart++
			}
			if current.start < 0 {
				current.start = contentStart
			}
			current.end = contentEnd
		}

		if lineEnd < 0 {
			break
		}
		offset = end + 1
	}
	flush()
	return paras
}
