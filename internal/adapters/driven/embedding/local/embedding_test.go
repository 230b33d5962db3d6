package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(0)
	assert.Equal(t, DefaultDimensions, s.Dimensions())
	assert.Equal(t, "hashing-tf", s.ModelName())
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())

	assert.Equal(t, 64, NewEmbeddingService(64).Dimensions())
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"renewable", "energy", "reduces", "emissions"},
		Tokenize("Renewable energy reduces emissions by 40%."))
	assert.Empty(t, Tokenize("the"))
	assert.Empty(t, Tokenize("  12 %  "))
}

func TestEmbed_Normalised(t *testing.T) {
	s := NewEmbeddingService(0)
	vec, err := s.Embed(context.Background(), "solar panels convert sunlight into electricity")
	require.NoError(t, err)
	require.Len(t, vec, DefaultDimensions)
	assert.InDelta(t, 1.0, math.Sqrt(cosine(vec, vec)), 1e-6)
}

func TestEmbed_StopwordsOnlyIsZero(t *testing.T) {
	s := NewEmbeddingService(0)
	vec, err := s.Embed(context.Background(), "the")
	require.NoError(t, err)
	require.Len(t, vec, DefaultDimensions)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbed_SharedVocabularyScoresHigher(t *testing.T) {
	s := NewEmbeddingService(0)
	ctx := context.Background()

	q, err := s.Embed(ctx, "renewable energy cuts emissions")
	require.NoError(t, err)
	near, err := s.Embed(ctx, "Renewable energy reduces emissions by 40%.")
	require.NoError(t, err)
	far, err := s.Embed(ctx, "The committee approved the annual budget.")
	require.NoError(t, err)

	assert.Greater(t, cosine(q, near), cosine(q, far))
	assert.InDelta(t, 0.75, cosine(q, near), 0.1)
}

func TestEmbed_Deterministic(t *testing.T) {
	s := NewEmbeddingService(0)
	a, err := s.Embed(context.Background(), "wind turbines")
	require.NoError(t, err)
	b, err := s.Embed(context.Background(), "wind turbines")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedBatch(t *testing.T) {
	s := NewEmbeddingService(32)
	out, err := s.EmbedBatch(context.Background(), []string{"alpha", "beta", ""})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, v := range out {
		assert.Len(t, v, 32)
	}
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbeddingService(0).Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}
