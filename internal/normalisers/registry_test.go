package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

type stubNormaliser struct {
	mimes    []string
	priority int
	title    string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Title: s.title, PageCount: 1}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubNormaliser{mimes: []string{"text/plain"}, priority: 5, title: "fallback"})
	reg.Register(&stubNormaliser{mimes: []string{"text/plain", "text/markdown"}, priority: 50, title: "specific"})

	result, err := reg.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "specific", result.Title)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Normalise(context.Background(), &domain.RawDocument{URI: "x.bin", MIMEType: "application/octet-stream"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	extractionErr, ok := domain.AsExtractionError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ExtractionUnsupported, extractionErr.Reason)
}

func TestRegistry_NilDocument(t *testing.T) {
	_, err := NewRegistry().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubNormaliser{mimes: []string{"text/plain", "application/pdf"}})

	assert.Equal(t, []string{"application/pdf", "text/plain"}, reg.SupportedMIMETypes())
}
