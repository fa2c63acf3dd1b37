// Package lexical provides a concept scorer built on term statistics.
// It ranks repeated content words and two-word phrases without any
// external model, which keeps metadata extraction fully local.
package lexical

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/docforge/docforge/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.ConceptScorer = (*Scorer)(nil)

// minMentions is the number of occurrences below which a candidate is
// considered incidental rather than a concept.
const minMentions = 2

// minWordLen filters short function-ish words that survive the stopword
// list.
const minWordLen = 4

// stopwords covers the languages the pipeline detects.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"and", "the", "that", "this", "with", "from", "have", "has", "are",
		"was", "were", "for", "not", "but", "its", "their", "they", "them",
		"which", "into", "also", "been", "more", "than", "then", "when",
		"les", "des", "une", "est", "sont", "dans", "pour", "par", "sur",
		"avec", "qui", "que", "plus", "cette", "comme", "aux", "ses",
		"und", "der", "die", "das", "ein", "eine", "ist", "sind", "mit",
		"los", "las", "una", "son", "con", "para", "del", "por",
	} {
		stopwords[w] = struct{}{}
	}
}

// Scorer ranks key phrases by frequency, preferring bigrams over single
// words at equal counts. Ranking is deterministic: ties break
// alphabetically.
type Scorer struct{}

// New creates a lexical scorer.
func New() *Scorer {
	return &Scorer{}
}

type candidate struct {
	phrase string
	count  int
	words  int
}

// Score returns up to limit phrases ranked most-salient first.
func (s *Scorer) Score(_ context.Context, text string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	tokens := tokenize(text)
	counts := map[string]int{}
	for i, tok := range tokens {
		if usable(tok) {
			counts[tok]++
			if i+1 < len(tokens) && usable(tokens[i+1]) {
				counts[tok+" "+tokens[i+1]]++
			}
		}
	}

	var cands []candidate
	for phrase, n := range counts {
		if n < minMentions {
			continue
		}
		cands = append(cands, candidate{
			phrase: phrase,
			count:  n,
			words:  strings.Count(phrase, " ") + 1,
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.words != b.words {
			return a.words > b.words
		}
		return a.phrase < b.phrase
	})

	// A bigram subsumes its member words: drop a single word already
	// covered by a higher-ranked phrase.
	covered := map[string]struct{}{}
	var out []string
	for _, c := range cands {
		if len(out) == limit {
			break
		}
		if c.words == 1 {
			if _, dup := covered[c.phrase]; dup {
				continue
			}
		}
		for _, w := range strings.Split(c.phrase, " ") {
			covered[w] = struct{}{}
		}
		out = append(out, c.phrase)
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-' && r != '\''
	})
}

func usable(tok string) bool {
	if len(tok) < minWordLen {
		return false
	}
	_, stop := stopwords[tok]
	return !stop
}
