package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/core/domain"
)

func TestExtractValidText(t *testing.T) {
	text, err := New().Extract(context.Background(), []byte("hello\nworld"), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{0xff, 0xfe, 0x00}, "a.txt")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
