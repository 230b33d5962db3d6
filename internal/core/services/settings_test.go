package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func newSettings(values map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStoreFrom(values)
	service := NewSettingsService(store, nil)
	service.getenv = func(k string) string { return env[k] }
	return service, store
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettings(nil, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, "hashing-tf", settings.Embedding.Model)
	assert.Equal(t, 512, settings.Embedding.Dimensions)
	assert.Equal(t, defaults.Extraction, settings.Extraction)
	assert.Equal(t, defaults.Analysis, settings.Analysis)
	assert.Equal(t, defaults.Classifier, settings.Classifier)
	assert.Equal(t, domain.CategoryKnowledgeBase, settings.Library.DefaultCategory)
	assert.False(t, settings.LLM.IsConfigured())
	assert.Equal(t, defaults, service.GetDefaults())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, _ := newSettings(map[string]any{
		"embedding.provider":              "openai",
		"embedding.api_key":               "sk-file",
		"analysis.similarity_floor":       0.2,
		"analysis.contradiction_threshold": int64(0), // TOML integers widen
		"analysis.max_results":            int64(12),
		"analysis.timeout":                "3s",
		"classifier.lexicon_path":         "/tmp/lex.yaml",
		"library.default_category":        "reading",
		"extraction.min_words":            int64(20),
	}, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, 1536, settings.Embedding.Dimensions)
	assert.Equal(t, "sk-file", settings.Embedding.APIKey)
	assert.InDelta(t, 0.2, settings.Analysis.SimilarityFloor, 1e-9)
	assert.InDelta(t, 0.0, settings.Analysis.ContradictionThreshold, 1e-9)
	assert.Equal(t, 12, settings.Analysis.MaxResults)
	assert.Equal(t, 3*time.Second, settings.Analysis.Timeout)
	assert.Equal(t, "/tmp/lex.yaml", settings.Classifier.LexiconPath)
	assert.Equal(t, domain.CategoryReading, settings.Library.DefaultCategory)
	assert.Equal(t, 20, settings.Extraction.MinWords)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, _ := newSettings(map[string]any{
		"embedding.provider":       "cohere",
		"analysis.timeout":         "soon",
		"library.default_category": "archive",
	}, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Analysis.Timeout, settings.Analysis.Timeout)
	assert.Equal(t, defaults.Library.DefaultCategory, settings.Library.DefaultCategory)
}

func TestSettingsService_Get_APIKeyFromEnvironment(t *testing.T) {
	service, _ := newSettings(map[string]any{
		"embedding.provider": "openai",
		"llm.provider":       "anthropic",
	}, map[string]string{
		"OPENAI_API_KEY":    "sk-env",
		"ANTHROPIC_API_KEY": "sk-ant-env",
	})

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	assert.Equal(t, "sk-ant-env", settings.LLM.APIKey)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Save(t *testing.T) {
	service, store := newSettings(nil, map[string]string{"OPENAI_API_KEY": "sk-env"})

	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-large",
		APIKey:   "sk-env",
	}
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-ant-test",
	}
	settings.Analysis.SupportingThreshold = 0.7
	settings.Analysis.Timeout = 2 * time.Second

	require.NoError(t, service.Save(&settings))

	retrieved, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, retrieved.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", retrieved.Embedding.Model)
	assert.Equal(t, "sk-env", retrieved.Embedding.APIKey)
	assert.Equal(t, "sk-ant-test", retrieved.LLM.APIKey)
	assert.InDelta(t, 0.7, retrieved.Analysis.SupportingThreshold, 1e-9)
	assert.Equal(t, 2*time.Second, retrieved.Analysis.Timeout)

	// The environment key is never copied into the file.
	_, written := store.Get("embedding.api_key")
	assert.False(t, written)
	assert.Equal(t, "sk-ant-test", store.GetString("llm.api_key"))
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{"analysis.similarity_floor", "0.3", func(t *testing.T, s *domain.AppSettings) {
			assert.InDelta(t, 0.3, s.Analysis.SimilarityFloor, 1e-9)
		}},
		{"analysis.max_results", "10", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 10, s.Analysis.MaxResults)
		}},
		{"analysis.timeout", "1500ms", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 1500*time.Millisecond, s.Analysis.Timeout)
		}},
		{"library.default_category", "kb", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.CategoryKnowledgeBase, s.Library.DefaultCategory)
		}},
		{"embedding.provider", "OLLAMA", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
			assert.Equal(t, "nomic-embed-text", s.Embedding.Model)
		}},
		{" Extraction.Max_Words ", "300", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 300, s.Extraction.MaxWords)
		}},
		{"classifier.numeric_tolerance", "0.25", func(t *testing.T, s *domain.AppSettings) {
			assert.InDelta(t, 0.25, s.Classifier.NumericTolerance, 1e-9)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service, _ := newSettings(nil, nil)
			require.NoError(t, service.Set(tt.key, tt.value))
			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_Set_List(t *testing.T) {
	service, store := newSettings(nil, nil)
	require.NoError(t, service.Set("pipeline.processors", "sectioner, wordband,"))
	assert.Equal(t, []string{"sectioner", "wordband"}, store.GetStringSlice("pipeline.processors"))

	err := service.Set("pipeline.processors", " , ")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"not an int", "analysis.max_results", "many"},
		{"negative int", "analysis.max_results", "-1"},
		{"not a float", "analysis.similarity_floor", "high"},
		{"bad duration", "analysis.timeout", "later"},
		{"bad provider", "embedding.provider", "cohere"},
		{"bad category", "library.default_category", "archive"},
		{"floor out of range", "analysis.similarity_floor", "1.5"},
		{"floor above thresholds", "analysis.similarity_floor", "0.9"},
		{"too many results", "analysis.max_results", "51"},
		{"inverted band", "extraction.min_words", "500"},
		{"tolerance out of range", "classifier.numeric_tolerance", "2"},
		{"openai without key", "embedding.provider", "openai"},
		{"small heading ratio", "extraction.heading_ratio", "0.5"},
		{"inverted sentences", "analysis.min_sentences", "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newSettings(nil, nil)
			before, err := service.Get()
			require.NoError(t, err)

			err = service.Set(tt.key, tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))

			after, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, before, after, "a rejected value must not stick")
			assert.NoError(t, service.Validate())
		})
	}
}

func TestSettingsService_Set_RollsBackToPreviousValue(t *testing.T) {
	service, _ := newSettings(map[string]any{"analysis.max_results": int64(8)}, nil)
	require.Error(t, service.Set("analysis.max_results", "99"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, settings.Analysis.MaxResults)
}

func TestSettableKeys(t *testing.T) {
	keys := SettableKeys()
	assert.Contains(t, keys, "analysis.similarity_floor")
	assert.Contains(t, keys, "library.default_category")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("ollama", func(t *testing.T) {
		service, _ := newSettings(nil, nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

		settings, _ := service.Get()
		assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
		assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
		assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
		assert.Equal(t, 768, settings.Embedding.Dimensions)
	})

	t.Run("openai with key", func(t *testing.T) {
		service, _ := newSettings(nil, nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk-test"))

		settings, _ := service.Get()
		assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
		assert.Equal(t, "sk-test", settings.Embedding.APIKey)
		assert.Equal(t, 3072, settings.Embedding.Dimensions)
		assert.Empty(t, settings.Embedding.BaseURL)
	})

	t.Run("openai from environment", func(t *testing.T) {
		service, _ := newSettings(nil, map[string]string{"OPENAI_API_KEY": "sk-env"})
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))

		settings, _ := service.Get()
		assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	})

	t.Run("back to local", func(t *testing.T) {
		service, _ := newSettings(nil, nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderLocal, "", ""))

		settings, _ := service.Get()
		assert.Equal(t, "hashing-tf", settings.Embedding.Model)
		assert.Empty(t, settings.Embedding.BaseURL)
	})

	t.Run("errors", func(t *testing.T) {
		service, _ := newSettings(nil, nil)
		assert.Error(t, service.SetEmbeddingProvider(domain.AIProvider("nope"), "", ""))
		assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "k"))

		err := service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key required")
	})
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service, _ := newSettings(nil, nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, _ := service.Get()
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "claude-x", "sk-ant"))
	settings, _ = service.Get()
	assert.Equal(t, "claude-x", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)

	assert.Error(t, service.SetLLMProvider(domain.AIProviderLocal, "", ""))
	assert.Error(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""))

	require.NoError(t, service.ClearLLMProvider())
	settings, _ = service.Get()
	assert.False(t, settings.LLM.IsConfigured())
	assert.Empty(t, settings.LLM.APIKey)
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	service, _ := newSettings(nil, nil)
	assert.NoError(t, service.ValidateEmbeddingConfig())
	assert.NoError(t, service.ValidateLLMConfig())

	validator := &mockAIValidator{llmErr: errors.New("unreachable")}
	service.aiValidator = validator

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, domain.AIProviderLocal, validator.embedding.Provider)

	assert.EqualError(t, service.ValidateLLMConfig(), "unreachable")
}

func TestSettingsService_GetPipelineConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		service, _ := newSettings(nil, nil)
		cfg := service.GetPipelineConfig()
		assert.Equal(t, domain.DefaultPipelineConfig(), cfg)
	})

	t.Run("extraction settings feed the band", func(t *testing.T) {
		service, _ := newSettings(map[string]any{
			"extraction.min_words":    int64(20),
			"extraction.max_words":    int64(200),
			"extraction.target_words": int64(150),
		}, nil)
		cfg := service.GetPipelineConfig()
		assert.Equal(t, 20, cfg.ProcessorConfigs["wordband"]["min_words"])
		assert.Equal(t, 200, cfg.ProcessorConfigs["wordband"]["max_words"])
		assert.Equal(t, 150, cfg.ProcessorConfigs["sectioner"]["target_words"])
	})

	t.Run("pipeline overrides", func(t *testing.T) {
		service, _ := newSettings(map[string]any{
			"pipeline.processors":         []any{"sectioner"},
			"pipeline.sectioner.target_words": int64(90),
		}, nil)
		cfg := service.GetPipelineConfig()
		assert.Equal(t, []string{"sectioner"}, cfg.Processors)
		assert.Equal(t, int64(90), cfg.ProcessorConfigs["sectioner"]["target_words"])
	})
}
