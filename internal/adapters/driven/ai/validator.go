package ai

import (
	"time"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building the adapter and
// pinging it once. It is what the settings service uses before saving.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator. A zero timeout uses the default.
func NewConfigValidator(timeout ...time.Duration) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	if len(timeout) > 0 && timeout[0] > 0 {
		v.timeout = timeout[0]
	}
	return v
}

// ValidateEmbedding pings the embedding provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return validateWith(v.timeout, func() (driven.Provider, error) {
		return CreateEmbeddingService(config)
	})
}

// ValidateLLM pings the LLM provider. Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return validateWith(v.timeout, func() (driven.Provider, error) {
		return CreateLLMService(config)
	})
}
