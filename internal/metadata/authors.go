package metadata

import (
	"regexp"
	"strings"
)

var (
	authorLabelPattern = regexp.MustCompile(`(?i)^(?:authors?|auteurs?)\s*:\s*(.+)$`)
	bylinePattern      = regexp.MustCompile(`^(?:[Bb]y|[Pp]ar)\s+([A-ZÀ-Ü][\w'’-]+(?:\s+[A-ZÀ-Ü][\w'’-]+)+)$`)
	authorSplitter     = regexp.MustCompile(`\s*(?:;|,|\s+(?:and|et)\s+)\s*`)
)

// authorScanLines bounds the search to the front matter, where author
// lines actually live.
const authorScanLines = 40

// ExtractAuthors pulls author names from labelled front-matter lines
// ("Authors: A; B", "par Jean Dupont"). Names are returned in document
// order, deduplicated. No match yields nil and the field is omitted.
func ExtractAuthors(text string) []string {
	var authors []string
	seen := map[string]struct{}{}

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || !strings.Contains(name, " ") {
			return
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		authors = append(authors, name)
	}

	scanned := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		scanned++
		if scanned > authorScanLines {
			break
		}

		if m := authorLabelPattern.FindStringSubmatch(line); m != nil {
			for _, name := range authorSplitter.Split(m[1], -1) {
				add(name)
			}
			continue
		}
		if m := bylinePattern.FindStringSubmatch(line); m != nil {
			add(m[1])
		}
	}
	return authors
}
