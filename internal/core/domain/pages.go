package domain

import "strconv"

// PageMap records the start offsets of detected pages in the cleaned text,
// in ascending order. The first page always starts at offset 0. An empty
// map means page detection found nothing; page-derived metadata is then
// omitted rather than fabricated.
type PageMap []int

// PageCount returns the number of detected pages.
func (p PageMap) PageCount() int {
	return len(p)
}

// PageFor returns the 1-based page number containing the offset, or 0 when
// the map is empty.
func (p PageMap) PageFor(offset int) int {
	if len(p) == 0 {
		return 0
	}
	page := 1
	for i, start := range p {
		if offset < start {
			break
		}
		page = i + 1
	}
	return page
}

// RangeString formats the page span of [start, end) as "N" or "N-M".
// It returns "" when no pages were detected.
func (p PageMap) RangeString(start, end int) string {
	first := p.PageFor(start)
	if first == 0 {
		return ""
	}
	last := first
	if end > start {
		last = p.PageFor(end - 1)
	}
	if last == first {
		return strconv.Itoa(first)
	}
	return strconv.Itoa(first) + "-" + strconv.Itoa(last)
}
