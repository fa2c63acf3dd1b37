// Package cleaner normalizes extracted document text before chunking.
//
// Cleaning is a pure function of (raw text, config): deterministic and
// idempotent. Page segmentation happens first as a structural pass; the
// toggled stages then run in a fixed order over the page segments, and the
// cleaned pages are rejoined with a single blank line. The resulting page
// start offsets are returned so later stages can map chunk offsets back to
// page numbers.
package cleaner

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/docforge/docforge/internal/core/domain"
)

// Stage names recorded in CleaningStats.RemovedElements. A stage is
// recorded only when it actually changed the text.
const (
	StageHeaders     = "headers"
	StageFooters     = "footers"
	StagePageNumbers = "page_numbers"
	StageHyphenation = "hyphenation"
	StageQuotes      = "non_standard_quotes"
	StageWhitespace  = "extra_whitespace"
)

// headerFooterThreshold is the fraction of pages on which a line must
// repeat before it is treated as a running header or footer.
const headerFooterThreshold = 0.6

// edgeLines is how many lines from each page edge are considered header,
// footer or page-number candidates.
const edgeLines = 3

var (
	pageNumberLine = regexp.MustCompile(`^\s*(\d+|-\s*\d+\s*-|\d+\s*/\s*\d+)\s*$`)
	pageNumberText = regexp.MustCompile(`(?i)^\s*page\s+\d+(\s+(of|sur|de)\s+\d+)?\s*$`)
	separatorLine  = regexp.MustCompile(`^\s*(-\s*\d+\s*-|\d+)\s*$`)
	spaceRuns      = regexp.MustCompile(`[ \t]+`)
	quoteDoubles   = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "‟", `"`) // typographic doubles
	quoteSingles   = strings.NewReplacer("‘", "'", "’", "'", "‛", "'")                // typographic singles
)

// Result is the output of one cleaning run.
type Result struct {
	// Text is the cleaned text.
	Text string

	// Stats quantifies what was removed.
	Stats domain.CleaningStats

	// Pages holds the start offset of each detected page in Text.
	Pages domain.PageMap
}

// Cleaner applies the cleaning stages. It is stateless and safe for
// concurrent use.
type Cleaner struct{}

// New creates a cleaner.
func New() *Cleaner {
	return &Cleaner{}
}

// Clean normalizes raw text under the given config. It never fails on
// decoded text; undecodable bytes are the extractor's problem, not the
// cleaner's.
func (c *Cleaner) Clean(raw string, cfg domain.CleaningConfig) Result {
	originalLen := len(raw)

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	pages := segmentPages(text)

	removed := make(map[string]bool)

	if cfg.RemoveHeaders {
		if stripRepeatedEdges(pages, true) {
			removed[StageHeaders] = true
		}
	}
	if cfg.RemoveFooters {
		if stripRepeatedEdges(pages, false) {
			removed[StageFooters] = true
		}
	}
	if cfg.RemovePageNumbers {
		if stripPageNumbers(pages) {
			removed[StagePageNumbers] = true
		}
	}
	if cfg.FixHyphenation {
		if joinHyphenation(pages) {
			removed[StageHyphenation] = true
		}
	}
	if cfg.NormalizeQuotes {
		if normalizeQuotes(pages) {
			removed[StageQuotes] = true
		}
	}
	if cfg.RemoveExtraWhitespace {
		if collapseWhitespace(pages) {
			removed[StageWhitespace] = true
		}
	}

	cleaned, pageMap := joinPages(pages)

	stats := domain.CleaningStats{
		OriginalLength:  originalLen,
		CleanedLength:   len(cleaned),
		RemovedElements: sortedKeys(removed),
	}
	if originalLen > 0 {
		pct := float64(originalLen-len(cleaned)) / float64(originalLen) * 100
		stats.ReductionPercentage = math.Round(pct*100) / 100
	}

	return Result{Text: cleaned, Stats: stats, Pages: pageMap}
}

// page is a mutable page segment during cleaning.
type page struct {
	lines []string
}

// segmentPages splits text into page segments. Form feeds from the
// extractor are authoritative; numeric separator lines and long blank runs
// catch text that lost its page markers. The splits compose so repeated
// cleaning sees a stable segmentation, and page edges are always trimmed
// of blank lines so rejoining is stable across repeated runs.
func segmentPages(text string) []*page {
	var rawPages []string
	for _, ffPart := range strings.Split(text, "\f") {
		for _, sepPart := range splitOnSeparatorLines(ffPart) {
			rawPages = append(rawPages, splitOnBlankRuns(sepPart)...)
		}
	}

	pages := make([]*page, 0, len(rawPages))
	for _, raw := range rawPages {
		lines := trimBlankEdges(strings.Split(raw, "\n"))
		if len(lines) == 0 {
			continue
		}
		pages = append(pages, &page{lines: lines})
	}
	if len(pages) == 0 {
		pages = append(pages, &page{})
	}
	return pages
}

// splitOnSeparatorLines cuts the text after lines of the form "- 12 -" or
// a standalone numeral that sit between blank lines, a common page
// separator in extracted documents. The separator itself is kept on the
// page it closes so the page-number stage can account for its removal.
func splitOnSeparatorLines(text string) []string {
	lines := strings.Split(text, "\n")
	var pages []string
	var current []string

	for i, line := range lines {
		current = append(current, line)

		isSeparator := separatorLine.MatchString(line) &&
			strings.TrimSpace(line) != "" &&
			i > 0 && strings.TrimSpace(lines[i-1]) == "" &&
			i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == ""
		if isSeparator {
			pages = append(pages, strings.Join(current, "\n"))
			current = nil
		}
	}
	if len(current) > 0 {
		pages = append(pages, strings.Join(current, "\n"))
	}
	return pages
}

// splitOnBlankRuns treats three or more consecutive blank lines as a page
// boundary.
func splitOnBlankRuns(text string) []string {
	lines := strings.Split(text, "\n")
	var pages []string
	var current []string
	blanks := 0

	flush := func() {
		if len(current) > 0 {
			pages = append(pages, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks >= 3 {
				flush()
				continue
			}
		} else {
			blanks = 0
		}
		current = append(current, line)
	}
	flush()
	return pages
}

func trimBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// normalizeLine is the comparison form used for near-verbatim header and
// footer matching: case-folded with whitespace collapsed.
func normalizeLine(line string) string {
	return strings.ToLower(strings.Join(strings.Fields(line), " "))
}

// stripRepeatedEdges removes running headers (top=true) or footers. A line
// whose normalized form appears at the relevant edge of at least 60% of
// pages is removed from every occurrence on every page. Requires at least
// two pages; single-page documents have no running headers.
func stripRepeatedEdges(pages []*page, top bool) bool {
	if len(pages) < 2 {
		return false
	}

	counts := make(map[string]int)
	for _, p := range pages {
		seen := make(map[string]bool)
		for _, line := range edgeCandidates(p.lines, top) {
			norm := normalizeLine(line)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			counts[norm]++
		}
	}

	repeated := make(map[string]bool)
	needed := int(math.Ceil(headerFooterThreshold * float64(len(pages))))
	if needed < 2 {
		needed = 2
	}
	for norm, n := range counts {
		if n >= needed {
			repeated[norm] = true
		}
	}
	if len(repeated) == 0 {
		return false
	}

	changed := false
	for _, p := range pages {
		kept := p.lines[:0]
		for _, line := range p.lines {
			if repeated[normalizeLine(line)] {
				changed = true
				continue
			}
			kept = append(kept, line)
		}
		p.lines = trimBlankEdges(kept)
	}
	return changed
}

// edgeCandidates returns the first or last few non-blank lines of a page.
func edgeCandidates(lines []string, top bool) []string {
	budget := 2
	var out []string
	if top {
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			out = append(out, line)
			if len(out) == budget {
				break
			}
		}
		return out
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		out = append(out, lines[i])
		if len(out) == budget {
			break
		}
	}
	return out
}

// stripPageNumbers drops standalone numeral and "Page N of M" lines near
// page edges.
func stripPageNumbers(pages []*page) bool {
	changed := false
	for _, p := range pages {
		kept := p.lines[:0]
		for i, line := range p.lines {
			nearEdge := i < edgeLines || i >= len(p.lines)-edgeLines
			if nearEdge && (pageNumberLine.MatchString(line) || pageNumberText.MatchString(line)) {
				changed = true
				continue
			}
			kept = append(kept, line)
		}
		p.lines = trimBlankEdges(kept)
	}
	return changed
}

// joinHyphenation merges words split across a line break by a hyphen when
// both fragments are lowercase alphabetic, dropping the hyphen.
func joinHyphenation(pages []*page) bool {
	changed := false
	for _, p := range pages {
		for i := 0; i < len(p.lines)-1; i++ {
			head := p.lines[i]
			tail := p.lines[i+1]
			if !strings.HasSuffix(head, "-") || tail == "" {
				continue
			}
			fragment := trailingWord(strings.TrimSuffix(head, "-"))
			if fragment == "" || !isLowerAlpha(fragment) || !isLowerAlpha(leadingWord(tail)) {
				continue
			}
			// Pull the continuation word up, keeping the rest of the
			// next line in place.
			cont := leadingWord(tail)
			p.lines[i] = strings.TrimSuffix(head, "-") + cont
			rest := strings.TrimPrefix(tail, cont)
			if strings.TrimSpace(rest) == "" {
				// The continuation line was consumed entirely; remove it
				// so the join does not leave a paragraph break behind.
				p.lines = append(p.lines[:i+1], p.lines[i+2:]...)
				i--
			} else {
				p.lines[i+1] = strings.TrimLeft(rest, " ")
			}
			changed = true
		}
		p.lines = trimBlankEdges(p.lines)
	}
	return changed
}

func trailingWord(s string) string {
	end := len(s)
	start := end
	for start > 0 {
		ch := s[start-1]
		if ch >= 'a' && ch <= 'z' {
			start--
			continue
		}
		break
	}
	return s[start:end]
}

func leadingWord(s string) string {
	end := 0
	for end < len(s) {
		ch := s[end]
		if ch >= 'a' && ch <= 'z' {
			end++
			continue
		}
		break
	}
	return s[:end]
}

func isLowerAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// normalizeQuotes maps typographic quote variants to the canonical ASCII
// pair.
func normalizeQuotes(pages []*page) bool {
	changed := false
	for _, p := range pages {
		for i, line := range p.lines {
			replaced := quoteSingles.Replace(quoteDoubles.Replace(line))
			if replaced != line {
				p.lines[i] = replaced
				changed = true
			}
		}
	}
	return changed
}

// collapseWhitespace trims line edges, collapses space runs and reduces
// blank-line runs to a single blank line.
func collapseWhitespace(pages []*page) bool {
	changed := false
	for _, p := range pages {
		kept := p.lines[:0]
		blank := false
		for _, line := range p.lines {
			collapsed := strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
			if collapsed != line {
				changed = true
			}
			if collapsed == "" {
				if blank {
					changed = true
					continue
				}
				blank = true
			} else {
				blank = false
			}
			kept = append(kept, collapsed)
		}
		p.lines = trimBlankEdges(kept)
	}
	return changed
}

// joinPages reassembles the cleaned pages with a blank line between them
// and records each page's start offset in the result.
func joinPages(pages []*page) (string, domain.PageMap) {
	var sb strings.Builder
	pageMap := make(domain.PageMap, 0, len(pages))

	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		pageMap = append(pageMap, sb.Len())
		sb.WriteString(strings.Join(p.lines, "\n"))
	}
	return sb.String(), pageMap
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return []string{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
