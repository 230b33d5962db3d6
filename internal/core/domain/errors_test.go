package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrExtraction", ErrExtraction},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrServiceUnavailable", ErrServiceUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrServiceUnavailable_DistinctFromEmbedding tests degraded-mode errors stay distinguishable
func TestErrServiceUnavailable_DistinctFromEmbedding(t *testing.T) {
	wrapped := fmt.Errorf("%w: %w", ErrServiceUnavailable, ErrEmbeddingUnavailable)

	assert.True(t, errors.Is(wrapped, ErrServiceUnavailable))
	assert.True(t, errors.Is(wrapped, ErrEmbeddingUnavailable))
	assert.False(t, errors.Is(ErrServiceUnavailable, ErrEmbeddingUnavailable))
}

// TestExtractionError tests the typed extraction error
func TestExtractionError(t *testing.T) {
	cause := errors.New("xref table broken")
	err := NewExtractionError("/lib/a.pdf", ExtractionCorrupt, cause)

	assert.Equal(t, "extract /lib/a.pdf: corrupt: xref table broken", err.Error())
	assert.True(t, errors.Is(err, ErrExtraction))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.False(t, err.IsNoContent())
}

// TestExtractionError_NoContent tests the empty-document reason
func TestExtractionError_NoContent(t *testing.T) {
	err := NewExtractionError("/lib/scan.pdf", ExtractionEmpty, nil)

	assert.Equal(t, "extract /lib/scan.pdf: empty", err.Error())
	assert.True(t, err.IsNoContent())
}

// TestAsExtractionError tests unwrapping through fmt wrapping
func TestAsExtractionError(t *testing.T) {
	wrapped := fmt.Errorf("ingest: %w", NewExtractionError("x.bin", ExtractionUnsupported, ErrUnsupportedType))

	extractionErr, ok := AsExtractionError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ExtractionUnsupported, extractionErr.Reason)
	assert.True(t, errors.Is(wrapped, ErrUnsupportedType))

	_, ok = AsExtractionError(errors.New("disk full"))
	assert.False(t, ok)
}
