package metadata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/logging"
)

type stubScorer struct {
	phrases []string
	err     error
}

func (s *stubScorer) Score(_ context.Context, _ string, limit int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.phrases) > limit {
		return s.phrases[:limit], nil
	}
	return s.phrases, nil
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "english",
			text: "The system is built for the preparation of documents and the indexing of chunks.",
			want: "en",
		},
		{
			name: "french",
			text: "Le document est découpé et les morceaux sont indexés dans la base pour la recherche.",
			want: "fr",
		},
		{
			name: "too short to call",
			text: "hello world",
			want: "",
		},
		{
			name: "empty",
			text: "",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectLanguage(tc.text))
		})
	}
}

func TestDetectStructure(t *testing.T) {
	text := strings.Join([]string{
		"Table of Contents",
		"",
		"Chapter 1 Foundations",
		"",
		"Body text of the first chapter goes here.",
		"",
		"1.1 Background",
		"",
		"More body text follows the section heading.",
		"",
		"Chapitre 2 Méthodes",
	}, "\n")

	s := DetectStructure(text)
	require.NotNil(t, s)
	assert.True(t, s.HasTOC)

	require.Len(t, s.Chapters, 2)
	assert.Equal(t, "Chapter 1 Foundations", s.Chapters[0].Title)
	assert.Equal(t, "Chapitre 2 Méthodes", s.Chapters[1].Title)
	assert.Less(t, s.Chapters[0].StartOffset, s.Chapters[1].StartOffset)

	require.Len(t, s.Sections, 1)
	assert.Equal(t, "1.1 Background", s.Sections[0].Title)
}

func TestDetectStructureNothingFound(t *testing.T) {
	assert.Nil(t, DetectStructure("plain prose without any headings at all. just sentences."))
}

func TestExtractAuthors(t *testing.T) {
	text := strings.Join([]string{
		"A Study of Circular Communication",
		"Authors: Gregory Bateson; Paul Watzlawick",
		"par Jean Dupont",
		"",
		"Authors: Gregory Bateson",
		"Body text mentioning nobody in particular.",
	}, "\n")

	authors := ExtractAuthors(text)
	assert.Equal(t, []string{"Gregory Bateson", "Paul Watzlawick", "Jean Dupont"}, authors)
}

func TestExtractAuthorsNoneFound(t *testing.T) {
	assert.Nil(t, ExtractAuthors("no front matter here, just text that flows."))
}

func TestExtractDocumentAndChunkMetadata(t *testing.T) {
	text := strings.Join([]string{
		"Chapter 1 Systems",
		"",
		"The feedback loop is the central idea and the system adapts to it.",
		"",
		"Chapter 2 Practice",
		"",
		"The practice of reframing is applied to the family system.",
	}, "\n")

	chunks := []domain.Chunk{
		{ID: "chunk-0", Index: 0, Content: text[:85], Start: 0, End: 85},
		{ID: "chunk-1", Index: 1, Content: text[87:], Start: 87, End: len(text)},
	}
	pages := domain.PageMap{0, 87}

	scorer := &stubScorer{phrases: []string{"feedback loop", "reframing"}}
	meta, chunkMeta := NewExtractor(scorer, logging.Discard()).
		Extract(context.Background(), text, chunks, pages)

	assert.Equal(t, "en", meta.Language)
	assert.Equal(t, []string{"feedback loop", "reframing"}, meta.Concepts)
	require.NotNil(t, meta.Structure)
	require.Len(t, meta.Structure.Chapters, 2)

	require.Len(t, chunkMeta, 2)
	assert.Equal(t, "1", chunkMeta[0].PageRange)
	assert.Equal(t, "Chapter 1 Systems", chunkMeta[0].Section)
	assert.Equal(t, []string{"feedback loop"}, chunkMeta[0].KeyConcepts)

	assert.Equal(t, "2", chunkMeta[1].PageRange)
	assert.Equal(t, "Chapter 2 Practice", chunkMeta[1].Section)
	assert.Equal(t, []string{"reframing"}, chunkMeta[1].KeyConcepts)
}

func TestExtractScorerFailureOmitsConcepts(t *testing.T) {
	scorer := &stubScorer{err: errors.New("scorer offline")}
	text := "The quick brown fox jumps over the lazy dog and the field stays green for the season."

	meta, chunkMeta := NewExtractor(scorer, logging.Discard()).
		Extract(context.Background(), text, []domain.Chunk{{Content: text, End: len(text)}}, nil)

	assert.Nil(t, meta.Concepts)
	require.Len(t, chunkMeta, 1)
	assert.Nil(t, chunkMeta[0].KeyConcepts)
	assert.Empty(t, chunkMeta[0].PageRange)
}

func TestExtractWithoutScorer(t *testing.T) {
	meta, _ := NewExtractor(nil, logging.Discard()).
		Extract(context.Background(), "some text for the run and the record.", nil, nil)
	assert.Nil(t, meta.Concepts)
}
