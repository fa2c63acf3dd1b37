package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docforge/docforge/internal/core/domain"
)

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().SupportedExtensions())
}

func TestExtractRejectsGarbage(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("definitely not a pdf"), "paper.pdf")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
