package metadata

import "strings"

// stopwords per language tag. Detection counts how many tokens of the
// text belong to each set and picks the clear winner.
var stopwords = map[string][]string{
	"en": {"and", "or", "the", "a", "an", "is", "are", "to", "of", "for", "with", "that"},
	"fr": {"et", "ou", "le", "la", "les", "un", "une", "des", "est", "sont", "dans", "pour"},
	"de": {"und", "oder", "der", "die", "das", "ein", "eine", "ist", "sind", "mit", "für"},
	"es": {"y", "o", "el", "la", "los", "las", "un", "una", "es", "son", "con", "para"},
}

// minLanguageHits is the score below which detection reports nothing
// rather than guessing.
const minLanguageHits = 3

// DetectLanguage returns the best-guess language tag of the text, or ""
// when no language scores clearly enough. Ties also yield "".
func DetectLanguage(text string) string {
	sets := make(map[string]map[string]struct{}, len(stopwords))
	for tag, words := range stopwords {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		sets[tag] = set
	}

	scores := make(map[string]int, len(stopwords))
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()[]«»")
		for tag, set := range sets {
			if _, ok := set[token]; ok {
				scores[tag]++
			}
		}
	}

	best, bestScore, tied := "", 0, false
	for tag, score := range scores {
		switch {
		case score > bestScore:
			best, bestScore, tied = tag, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore < minLanguageHits || tied {
		return ""
	}
	return best
}
