package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

func TestNewConfigValidator_Timeout(t *testing.T) {
	assert.Equal(t, pingTimeout, NewConfigValidator().timeout)
	assert.Equal(t, pingTimeout, NewConfigValidator(0).timeout)
	assert.Equal(t, time.Second, NewConfigValidator(time.Second).timeout)
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	srv := ollamaStub(t)
	v := NewConfigValidator(time.Second)

	tests := []struct {
		name    string
		config  *domain.EmbeddingSettings
		wantErr bool
	}{
		{"nil config", nil, false},
		{"unconfigured", &domain.EmbeddingSettings{Model: "m"}, false},
		{"local", &domain.EmbeddingSettings{Provider: domain.AIProviderLocal}, false},
		{"reachable ollama", &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}, false},
		{"model not pulled", &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "mxbai-embed-large"}, true},
		{"unreachable ollama", &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: deadURL(t)}, true},
		{"anthropic", &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEmbedding(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	srv := ollamaStub(t)
	v := NewConfigValidator(time.Second)

	tests := []struct {
		name    string
		config  *domain.LLMSettings
		wantErr bool
	}{
		{"nil config", nil, false},
		{"unconfigured", &domain.LLMSettings{Model: "m"}, false},
		{"local never serves llm", &domain.LLMSettings{Provider: domain.AIProviderLocal}, false},
		{"reachable ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}, false},
		{"unreachable ollama", &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: deadURL(t)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLLM(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
