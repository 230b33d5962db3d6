// Package ai builds the embedding and LLM adapters named by the settings.
package ai

import (
	"context"
	"fmt"
	"time"

	localembed "github.com/custodia-labs/sercha-lens/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// pingTimeout bounds each connectivity check.
const pingTimeout = 5 * time.Second

// fixHint is appended to every provider error shown to the user.
const fixHint = "Run 'lens settings' to fix"

// InitResult holds the services built at start-up.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	PromptStore      driven.PromptStore

	// Warnings are provider problems that did not stop start-up.
	Warnings []string

	// FellBack reports that the configured embedder was replaced by the
	// local one.
	FellBack bool
}

// Initialise creates the embedding and LLM services for the given settings.
// An unreachable embedding provider falls back to the local embedder so the
// library stays usable offline; an unreachable LLM is simply left out.
func Initialise(settings *domain.AppSettings, prompts driven.PromptStore) *InitResult {
	result := &InitResult{PromptStore: prompts}

	embedding, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	if embedding == nil {
		result.FellBack = settings.Embedding.Provider != domain.AIProviderLocal
		embedding = localembed.NewEmbeddingService(0)
	}
	result.EmbeddingService = ratelimit.Wrap(embedding,
		settings.Embedding.RequestsPerSecond, settings.Embedding.Burst)

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	if aware, ok := llm.(driven.PromptStoreAware); ok && prompts != nil {
		aware.SetPromptStore(prompts)
	}
	result.LLMService = llm

	return result
}

// Close releases the services.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// ping checks svc within timeout.
func ping(svc driven.Provider, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svc.Ping(ctx)
}

// createAndPing builds a service and keeps it only when it answers.
// A nil service with a nil error means the provider is not configured.
func createAndPing[S driven.Provider](create func() (S, bool, error), unavailable error) (S, error) {
	var zero S
	svc, ok, err := create()
	if err != nil {
		return zero, fmt.Errorf("%w: %w. %s", unavailable, err, fixHint)
	}
	if !ok {
		return zero, nil
	}
	if err := ping(svc, pingTimeout); err != nil {
		svc.Close()
		return zero, fmt.Errorf("%w: service unreachable (%w). %s", unavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService returns a reachable embedding service,
// or nil when none is configured.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return createAndPing(func() (driven.EmbeddingService, bool, error) {
		svc, err := CreateEmbeddingService(settings)
		return svc, svc != nil, err
	}, domain.ErrEmbeddingUnavailable)
}

// CreateAndValidateLLMService returns a reachable LLM service, or nil when
// none is configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	return createAndPing(func() (driven.LLMService, bool, error) {
		svc, err := CreateLLMService(settings)
		return svc, svc != nil, err
	}, domain.ErrLLMUnavailable)
}

// ValidateEmbeddingConfig builds the embedding service and pings it once.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	return validateWith(pingTimeout, func() (driven.Provider, error) {
		return CreateEmbeddingService(settings)
	})
}

// ValidateLLMConfig builds the LLM service and pings it once.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	return validateWith(pingTimeout, func() (driven.Provider, error) {
		return CreateLLMService(settings)
	})
}

func validateWith(timeout time.Duration, create func() (driven.Provider, error)) error {
	svc, err := create()
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc, timeout)
}
