package driven

import "github.com/custodia-labs/sercha-lens/internal/core/domain"

// AIConfigValidator builds a provider from settings and pings it once, so a
// bad key or model is reported when it is saved rather than on first use.
// An unconfigured provider is valid.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
