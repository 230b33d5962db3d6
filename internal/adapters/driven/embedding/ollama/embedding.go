// Package ollama embeds section text with a locally served Ollama model.
package ollama

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = ollamaapi.DefaultBaseURL
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
	DefaultBatchSize  = 32
)

// Config selects the server and model. Zero fields take the defaults.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// BatchSize caps the inputs sent per /api/embed request.
	BatchSize int
}

type EmbeddingService struct {
	api        *ollamaapi.Client
	model      string
	dimensions int
	batchSize  int
}

type embedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	return &EmbeddingService{
		api:        ollamaapi.New(cfg.BaseURL, cmp.Or(cfg.Timeout, DefaultTimeout)),
		model:      cmp.Or(cfg.Model, DefaultModel),
		dimensions: cmp.Or(cfg.Dimensions, DefaultDimensions),
		batchSize:  cmp.Or(cfg.BatchSize, DefaultBatchSize),
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch splits texts into requests of at most BatchSize. Every vector
// must have the configured length, so a swapped model cannot mix sizes in
// one index.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		batch := texts[start:min(start+s.batchSize, len(texts))]
		vecs, err := s.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		for i, v := range vecs {
			if len(v) != s.dimensions {
				return nil, fmt.Errorf("ollama: %w: embedding %d has %d dimensions, want %d",
					domain.ErrDimensionMismatch, start+i, len(v), s.dimensions)
			}
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, batch []string) ([][]float32, error) {
	var resp embedResponse
	req := embedRequest{Model: s.model, Input: batch, Truncate: true}
	if err := s.api.Post(ctx, "/api/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(batch) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(resp.Embeddings), len(batch))
	}
	return resp.Embeddings, nil
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping fails unless the server answers and the model is pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.RequireModel(ctx, s.model)
}

func (s *EmbeddingService) Close() error { return nil }
