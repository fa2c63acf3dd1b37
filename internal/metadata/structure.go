package metadata

import (
	"regexp"
	"strings"

	"github.com/docforge/docforge/internal/core/domain"
)

var (
	tocPattern = regexp.MustCompile(`(?i)^(table\s+des\s+matières|sommaire|table\s+of\s+contents)\b`)

	chapterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(chapitre|chapter)\s+\d+`),
		regexp.MustCompile(`^\d+\.\s+[A-ZÀ-Ü]`),
		regexp.MustCompile(`^[IVXLC]+\.\s+[A-ZÀ-Ü]`),
	}

	sectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d+\.\d+\.?\s+\S`),
		regexp.MustCompile(`(?i)^(section|annexe|appendix)\s+[\dA-Z]`),
	}
)

// maxTitleLen bounds heading candidates; longer lines are body text.
const maxTitleLen = 100

// DetectStructure scans the cleaned text for a chapter/section skeleton
// and a table-of-contents marker. It returns nil when nothing structural
// was found, so the document_structure field is omitted.
func DetectStructure(text string) *domain.DocumentStructure {
	s := domain.DocumentStructure{}

	offset := 0
	for offset <= len(text) {
		nl := strings.IndexByte(text[offset:], '\n')
		end := offset + nl
		if nl < 0 {
			end = len(text)
		}

		line := strings.TrimSpace(text[offset:end])
		if line != "" && len(line) < maxTitleLen {
			switch {
			case tocPattern.MatchString(line):
				s.HasTOC = true
			case matchAny(chapterPatterns, line):
				s.Chapters = append(s.Chapters, domain.Heading{Title: line, StartOffset: offset})
			case matchAny(sectionPatterns, line):
				s.Sections = append(s.Sections, domain.Heading{Title: line, StartOffset: offset})
			}
		}

		if nl < 0 {
			break
		}
		offset = end + 1
	}

	if !s.HasTOC && len(s.Chapters) == 0 && len(s.Sections) == 0 {
		return nil
	}
	return &s
}

func matchAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
