// Package openai embeds sections with the OpenAI embeddings API or any
// OpenAI-compatible server.
package openai

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/openaiapi"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = openaiapi.DefaultBaseURL
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// unknownModelDimensions is assumed for models missing from nativeDimensions.
	unknownModelDimensions = 1536
)

var nativeDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config selects the account and embedding model. Dimensions shortens
// text-embedding-3 vectors when it differs from the native size.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// EmbeddingService embeds sections through the embeddings endpoint.
type EmbeddingService struct {
	client     *openai.Client
	model      string
	dimensions int
	shorten    bool
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	client, err := openaiapi.NewClient(openaiapi.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, DefaultTimeout)
	if err != nil {
		return nil, err
	}
	model := cmp.Or(cfg.Model, DefaultModel)
	dims, shorten := resolveDimensions(model, cfg.Dimensions)
	return &EmbeddingService{client: client, model: model, dimensions: dims, shorten: shorten}, nil
}

// resolveDimensions returns the vector size for model and whether the
// request must ask the server to shorten it. ada-002 cannot be shortened.
func resolveDimensions(model string, requested int) (int, bool) {
	native, known := nativeDimensions[model]
	if !known {
		native = unknownModelDimensions
	}
	if requested <= 0 {
		return native, false
	}
	return requested, model != "text-embedding-ada-002" && requested != native
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errors.New("openai: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in one request. Vectors are returned in
// input order and normalised to unit length.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	}
	if s.shorten {
		req.Dimensions = s.dimensions
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", data.Index)
		}
		v := make([]float32, len(data.Embedding))
		for i, x := range data.Embedding {
			v[i] = float32(x)
		}
		l2normalize(v)
		embeddings[data.Index] = v
	}
	for i, v := range embeddings {
		if v == nil {
			return nil, fmt.Errorf("openai: missing embedding for input %d", i)
		}
	}
	return embeddings, nil
}

func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

func (s *EmbeddingService) Ping(ctx context.Context) error {
	return openaiapi.Ping(ctx, s.client)
}

func (s *EmbeddingService) Close() error {
	return nil
}

// l2normalize scales v to unit length in place.
func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
