package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	assert.Contains(t, New().SupportedMIMETypes(), "text/plain")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Paragraphs(t *testing.T) {
	content := "Remote work increases productivity.\nMost teams agree.\n\n\nOffice time builds culture."

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		Name:    "remote_work.txt",
		URI:     "/library/remote_work.txt",
		Content: []byte(content),
	})
	require.NoError(t, err)

	assert.Equal(t, "remote work", result.Title)
	assert.Equal(t, 1, result.PageCount)
	require.Len(t, result.Blocks, 2)
	assert.Equal(t, "Remote work increases productivity. Most teams agree.", result.Blocks[0].Text)
	assert.Equal(t, "Office time builds culture.", result.Blocks[1].Text)
	for _, b := range result.Blocks {
		assert.False(t, b.IsHeading())
	}
}

func TestNormalise_FormFeedPages(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/doc.txt",
		Content: []byte("Page one.\fPage two.\n\nStill two.\f\fPage four."),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.PageCount)
	pages := make([]int, len(result.Blocks))
	for i, b := range result.Blocks {
		pages[i] = b.Page
	}
	assert.Equal(t, []int{1, 2, 2, 4}, pages)
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "/doc.txt",
		Content:  []byte("Text."),
		Metadata: map[string]any{"title": "Board Minutes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Board Minutes", result.Title)
}

func TestNormalise_Empty(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "/blank.txt", Content: []byte(" \n\f\n")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)

	extractionErr, ok := domain.AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ExtractionEmpty, extractionErr.Reason)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_StripsBOM(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/bom.txt",
		Content: append([]byte{0xEF, 0xBB, 0xBF}, "First paragraph."...),
	})
	require.NoError(t, err)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "First paragraph.", result.Blocks[0].Text)
}
