// Package local provides an offline embedding service based on feature
// hashing. It needs no network access or model files, so the library works
// out of the box; vectors capture shared vocabulary rather than meaning.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hashing-tf"
	DefaultDimensions = 512
)

var tokenPattern = regexp.MustCompile(`[a-z]+`)

// stopwords carry no topical signal and are not hashed.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "been": true, "but": true, "by": true, "can": true, "for": true,
	"from": true, "has": true, "have": true, "he": true, "her": true, "his": true,
	"i": true, "if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "our": true, "she": true,
	"so": true, "such": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true, "this": true,
	"those": true, "to": true, "was": true, "we": true, "were": true, "which": true,
	"while": true, "who": true, "will": true, "with": true, "would": true, "you": true,
}

// EmbeddingService hashes term frequencies into a fixed-length vector.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder with the given vector size.
// Zero or negative sizes use DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the l2-normalised term frequency vector of text.
// Text without content words yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := make([]float64, s.dimensions)
	for _, tok := range Tokenize(text) {
		acc[s.bucket(tok)]++
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, s.dimensions)
	if norm == 0 {
		return vec, nil
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// EmbedBatch embeds each text in turn.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *EmbeddingService) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(s.dimensions)) //nolint:gosec // dimensions is positive
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model.
func (s *EmbeddingService) ModelName() string {
	return DefaultModel
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// Tokenize returns the lowercase content words of text.
func Tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := words[:0]
	for _, w := range words {
		if !stopwords[w] {
			out = append(out, w)
		}
	}
	return out
}
