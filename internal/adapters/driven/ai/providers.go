package ai

import (
	"fmt"

	localembed "github.com/custodia-labs/sercha-lens/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/sercha-lens/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-lens/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/sercha-lens/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/sercha-lens/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-lens/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

type (
	embedderFunc func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	llmFunc      func(*domain.LLMSettings) (driven.LLMService, error)
)

var embedders = map[domain.AIProvider]embedderFunc{
	domain.AIProviderLocal: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return localembed.NewEmbeddingService(s.Dimensions), nil
	},
	domain.AIProviderOllama: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: embeddingDimensions(s, ollamaembed.DefaultDimensions),
		}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: s.Dimensions,
		})
	},
}

var llms = map[domain.AIProvider]llmFunc{
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return newOllamaLLM(s), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return openaillm.NewLLMService(openaillm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderAnthropic: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
}

func newOllamaLLM(s *domain.LLMSettings) *ollamallm.LLMService {
	return ollamallm.NewLLMService(ollamallm.Config{BaseURL: s.BaseURL, Model: s.Model})
}

// CreateEmbeddingService builds the configured embedding adapter without
// contacting it. It returns nil when no provider is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := embedders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%s does not support embeddings, use local, ollama or openai", settings.Provider)
	}
	return build(settings)
}

// embeddingDimensions resolves the vector size: explicit setting, then the
// known size of the model, then fallback.
func embeddingDimensions(settings *domain.EmbeddingSettings, fallback int) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if d := domain.EmbeddingDimensions()[settings.Model]; d > 0 {
		return d
	}
	return fallback
}

// CreateLLMService builds the configured LLM adapter without contacting it.
// It returns nil when no provider is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := llms[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	return build(settings)
}
