package cleaner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/core/domain"
)

func TestClean_RemovesRepeatedHeaders(t *testing.T) {
	c := New()
	doc := strings.Join([]string{
		"Confidential\nChapter one body text.\nMore body text here.",
		"Confidential\nSecond page body text.\nAnd more of it.",
		"Confidential\nThird page body text.\nClosing words.",
	}, "\f")

	res := c.Clean(doc, domain.DefaultCleaningConfig())

	assert.NotContains(t, res.Text, "Confidential")
	assert.Contains(t, res.Stats.RemovedElements, "headers")
	assert.Greater(t, res.Stats.ReductionPercentage, 0.0)
	assert.Equal(t, 3, res.Pages.PageCount())
}

func TestClean_HeaderRequiresMajority(t *testing.T) {
	c := New()
	doc := strings.Join([]string{
		"Confidential\nPage one body.\nText.",
		"Different line\nPage two body.\nText.",
		"Another line\nPage three body.\nText.",
		"Fourth header\nPage four body.\nText.",
	}, "\f")

	res := c.Clean(doc, domain.DefaultCleaningConfig())

	// One occurrence out of four pages is below the 60% threshold.
	assert.Contains(t, res.Text, "Confidential")
	assert.NotContains(t, res.Stats.RemovedElements, "headers")
}

func TestClean_RemovesFooters(t *testing.T) {
	c := New()
	doc := strings.Join([]string{
		"Body of the first page.\nMore text.\n© 2020 Example Corp",
		"Body of the second page.\nMore text.\n© 2020 Example Corp",
		"Body of the third page.\nMore text.\n© 2020 Example Corp",
	}, "\f")

	res := c.Clean(doc, domain.DefaultCleaningConfig())

	assert.NotContains(t, res.Text, "Example Corp")
	assert.Contains(t, res.Stats.RemovedElements, "footers")
}

func TestClean_RemovesPageNumbers(t *testing.T) {
	c := New()
	doc := "First page text here.\nStill first page.\n1\fSecond page text here.\nStill second page.\nPage 2 of 3\fThird page text.\nLast line of it.\n- 3 -"

	res := c.Clean(doc, domain.DefaultCleaningConfig())

	assert.Contains(t, res.Stats.RemovedElements, "page_numbers")
	for _, line := range strings.Split(res.Text, "\n") {
		assert.False(t, pageNumberLine.MatchString(line), "numeral line survived: %q", line)
		assert.False(t, pageNumberText.MatchString(line), "page-text line survived: %q", line)
	}
}

func TestClean_FixesHyphenation(t *testing.T) {
	c := New()
	cfg := domain.CleaningConfig{FixHyphenation: true}

	res := c.Clean("The communi-\ncation pattern repeats.", cfg)

	assert.Equal(t, "The communication\npattern repeats.", res.Text)
	assert.Contains(t, res.Stats.RemovedElements, "hyphenation")
}

func TestClean_HyphenationLeavesProperNounsAlone(t *testing.T) {
	c := New()
	cfg := domain.CleaningConfig{FixHyphenation: true}

	// Continuation starts uppercase: not a split word.
	res := c.Clean("Jean-\nPaul spoke first.", cfg)

	assert.Contains(t, res.Text, "Jean-\nPaul")
	assert.NotContains(t, res.Stats.RemovedElements, "hyphenation")
}

func TestClean_NormalizesQuotes(t *testing.T) {
	c := New()
	cfg := domain.CleaningConfig{NormalizeQuotes: true}

	res := c.Clean("“Hello” and ‘there’", cfg)

	assert.Equal(t, `"Hello" and 'there'`, res.Text)
	assert.Contains(t, res.Stats.RemovedElements, "non_standard_quotes")
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	c := New()
	cfg := domain.CleaningConfig{RemoveExtraWhitespace: true}

	res := c.Clean("  a   line  \n\n\nnext  paragraph ", cfg)

	assert.Equal(t, "a line\n\nnext paragraph", res.Text)
	assert.Contains(t, res.Stats.RemovedElements, "extra_whitespace")
}

func TestClean_DisabledStagesDoNothing(t *testing.T) {
	c := New()
	raw := "  spaced   out “quoted” text  "

	res := c.Clean(raw, domain.CleaningConfig{})

	assert.Equal(t, raw, res.Text)
	assert.Empty(t, res.Stats.RemovedElements)
	assert.Equal(t, 0.0, res.Stats.ReductionPercentage)
}

func TestClean_Stats(t *testing.T) {
	c := New()
	raw := "word      word"

	res := c.Clean(raw, domain.DefaultCleaningConfig())

	require.Equal(t, "word word", res.Text)
	assert.Equal(t, len(raw), res.Stats.OriginalLength)
	assert.Equal(t, len(res.Text), res.Stats.CleanedLength)
	assert.InDelta(t, 35.71, res.Stats.ReductionPercentage, 0.01)
}

func TestClean_EmptyInput(t *testing.T) {
	c := New()
	res := c.Clean("", domain.DefaultCleaningConfig())

	assert.Equal(t, "", res.Text)
	assert.Equal(t, 0.0, res.Stats.ReductionPercentage)
}

func TestClean_PageMapOffsets(t *testing.T) {
	c := New()
	doc := "first page line\fsecond page line\fthird page line"

	res := c.Clean(doc, domain.DefaultCleaningConfig())

	require.Equal(t, 3, res.Pages.PageCount())
	assert.Equal(t, 1, res.Pages.PageFor(0))
	for i, start := range res.Pages {
		if i == 0 {
			assert.Equal(t, 0, start)
			continue
		}
		assert.Equal(t, i+1, res.Pages.PageFor(start))
		// Each page start points at actual content, not separator.
		assert.False(t, strings.HasPrefix(res.Text[start:], "\n"))
	}
}

func TestClean_Idempotent(t *testing.T) {
	c := New()
	raw := strings.Join([]string{
		"Confidential\nThe commu-\nnication   was “circular” in nature.\n\n\n\nA second paragraph follows here.\n12",
		"Confidential\nMore body text with    odd spacing.\nPage 2 of 3",
		"Confidential\nFinal page content sits here.\n- 3 -",
	}, "\f")

	configs := map[string]domain.CleaningConfig{
		"all stages": domain.DefaultCleaningConfig(),
		"whitespace only": {
			RemoveExtraWhitespace: true,
		},
		"headers and page numbers": {
			RemoveHeaders:     true,
			RemovePageNumbers: true,
		},
		"hyphenation and quotes": {
			FixHyphenation:  true,
			NormalizeQuotes: true,
		},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			once := c.Clean(raw, cfg)
			twice := c.Clean(once.Text, cfg)
			assert.Equal(t, once.Text, twice.Text, "cleaning must be idempotent")
			assert.Empty(t, twice.Stats.RemovedElements, "second pass must remove nothing")
		})
	}
}
