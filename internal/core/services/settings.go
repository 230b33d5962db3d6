package services

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Environment variables consulted when no API key is configured.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

// defaultOllamaURL is used when a local provider has no base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService reads and writes AppSettings through the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a settings service. aiValidator may be nil, in
// which case provider checks always pass.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get returns the stored settings over the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	def := domain.DefaultAppSettings()
	r := reader{s.configStore}

	embedProvider := r.provider(keyEmbedProvider, def.Embedding.Provider)
	embedModel := r.str(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider])
	llmProvider := r.provider(keyLLMProvider, def.LLM.Provider)

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    embedModel,
			// Empty is valid: cloud providers use their own endpoint.
			BaseURL:           r.str(keyEmbedBaseURL, ""),
			APIKey:            s.apiKey(keyEmbedAPIKey, embedProvider),
			Dimensions:        r.count(keyEmbedDims, domain.EmbeddingDimensions()[embedModel]),
			RequestsPerSecond: r.number(keyEmbedRPS, def.Embedding.RequestsPerSecond),
			Burst:             r.count(keyEmbedBurst, def.Embedding.Burst),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    r.str(keyLLMModel, cmp.Or(def.LLM.Model, domain.DefaultLLMModels()[llmProvider])),
			BaseURL:  r.str(keyLLMBaseURL, ""),
			APIKey:   s.apiKey(keyLLMAPIKey, llmProvider),
		},
		Extraction: domain.ExtractionSettings{
			MinWords:     r.count(keyMinWords, def.Extraction.MinWords),
			MaxWords:     r.count(keyMaxWords, def.Extraction.MaxWords),
			TargetWords:  r.count(keyTargetWords, def.Extraction.TargetWords),
			HeadingRatio: r.number(keyHeadingRatio, def.Extraction.HeadingRatio),
		},
		Analysis: domain.AnalysisSettings{
			SimilarityFloor:        r.number(keyFloor, def.Analysis.SimilarityFloor),
			SupportingThreshold:    r.number(keySupporting, def.Analysis.SupportingThreshold),
			ContradictionThreshold: r.number(keyContradiction, def.Analysis.ContradictionThreshold),
			CandidateMultiplier:    r.count(keyMultiplier, def.Analysis.CandidateMultiplier),
			MaxResults:             r.count(keyMaxResults, def.Analysis.MaxResults),
			MinSentences:           r.count(keyMinSentences, def.Analysis.MinSentences),
			MaxSentences:           r.count(keyMaxSentences, def.Analysis.MaxSentences),
			ExtractChars:           r.count(keyExtractChars, def.Analysis.ExtractChars),
			Timeout:                r.duration(keyTimeout, def.Analysis.Timeout),
			SummaryTimeout:         r.duration(keySummaryTimeout, def.Analysis.SummaryTimeout),
		},
		Classifier: domain.ClassifierSettings{
			LexiconPath:      r.str(keyLexiconPath, ""),
			NumericTolerance: r.number(keyNumericTol, def.Classifier.NumericTolerance),
		},
		Library: domain.LibrarySettings{
			Path:            r.str(keyLibraryPath, ""),
			DefaultCategory: r.category(keyDefaultCategory, def.Library.DefaultCategory),
		},
	}, nil
}

// entry is one key written by Save.
type entry struct {
	key   string
	value any
}

func settingsEntries(st *domain.AppSettings) []entry {
	e, l, x, a := st.Embedding, st.LLM, st.Extraction, st.Analysis
	return []entry{
		{keyEmbedProvider, e.Provider.String()},
		{keyEmbedModel, e.Model},
		{keyEmbedBaseURL, e.BaseURL},
		{keyEmbedDims, e.Dimensions},
		{keyEmbedRPS, e.RequestsPerSecond},
		{keyEmbedBurst, e.Burst},
		{keyLLMProvider, l.Provider.String()},
		{keyLLMModel, l.Model},
		{keyLLMBaseURL, l.BaseURL},
		{keyMinWords, x.MinWords},
		{keyMaxWords, x.MaxWords},
		{keyTargetWords, x.TargetWords},
		{keyHeadingRatio, x.HeadingRatio},
		{keyFloor, a.SimilarityFloor},
		{keySupporting, a.SupportingThreshold},
		{keyContradiction, a.ContradictionThreshold},
		{keyMultiplier, a.CandidateMultiplier},
		{keyMaxResults, a.MaxResults},
		{keyMinSentences, a.MinSentences},
		{keyMaxSentences, a.MaxSentences},
		{keyExtractChars, a.ExtractChars},
		{keyTimeout, a.Timeout.String()},
		{keySummaryTimeout, a.SummaryTimeout.String()},
		{keyLexiconPath, st.Classifier.LexiconPath},
		{keyNumericTol, st.Classifier.NumericTolerance},
		{keyLibraryPath, st.Library.Path},
		{keyDefaultCategory, st.Library.DefaultCategory.String()},
	}
}

// Save writes every setting. API keys are written only when they differ from
// the environment, so a key exported in the shell never lands in the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	entries := settingsEntries(settings)
	if k := settings.Embedding.APIKey; k != "" && k != s.envKey(settings.Embedding.Provider) {
		entries = append(entries, entry{keyEmbedAPIKey, k})
	}
	if k := settings.LLM.APIKey; k != "" && k != s.envKey(settings.LLM.Provider) {
		entries = append(entries, entry{keyLLMAPIKey, k})
	}
	for _, e := range entries {
		if err := s.configStore.Set(e.key, e.value); err != nil {
			return fmt.Errorf("save %s: %w", e.key, err)
		}
	}
	return nil
}

// Set parses and stores one key. When the result fails Validate the previous
// value is put back and the validation error returned.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	parse, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	v, err := parse(key, strings.TrimSpace(value))
	if err != nil {
		return err
	}

	previous, existed := s.configStore.Get(key)
	if !existed {
		previous = ""
	}
	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := s.Validate(); err != nil {
		_ = s.configStore.Set(key, previous)
		return err
	}
	return nil
}

// checkProvider resolves the API key for provider, reading the environment
// when apiKey is empty.
func (s *SettingsService) checkProvider(provider domain.AIProvider, apiKey string) (string, error) {
	apiKey = cmp.Or(apiKey, s.envKey(provider))
	if provider.RequiresAPIKey() && apiKey == "" {
		return "", fmt.Errorf("API key required for %s", provider)
	}
	return apiKey, nil
}

// localURL keeps a configured base URL for local providers and clears it for
// the rest.
func localURL(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	return cmp.Or(current, defaultOllamaURL)
}

// SetEmbeddingProvider switches the embedder. An empty model selects the
// provider default and the vector size follows the model.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	switch {
	case !provider.IsValid():
		return fmt.Errorf("invalid embedding provider: %s", provider)
	case !provider.SupportsEmbeddings():
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	apiKey, err := s.checkProvider(provider, apiKey)
	if err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	e := &settings.Embedding
	e.Provider = provider
	e.Model = cmp.Or(model, domain.DefaultEmbeddingModels()[provider])
	e.BaseURL = localURL(provider, e.BaseURL)
	e.APIKey = apiKey
	e.Dimensions = domain.EmbeddingDimensions()[e.Model]
	return s.Save(settings)
}

// SetLLMProvider switches the model used for summaries.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || !provider.SupportsLLM() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	apiKey, err := s.checkProvider(provider, apiKey)
	if err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	l := &settings.LLM
	l.Provider = provider
	l.Model = cmp.Or(model, domain.DefaultLLMModels()[provider])
	l.BaseURL = localURL(provider, l.BaseURL)
	l.APIKey = apiKey
	return s.Save(settings)
}

// ClearLLMProvider blanks the llm table, which disables summaries.
func (s *SettingsService) ClearLLMProvider() error {
	for _, key := range []string{keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey} {
		if err := s.configStore.Set(key, ""); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks the stored settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidInput, settings.Embedding.Provider)
	}

	ext := settings.Extraction
	if ext.MinWords <= 0 || ext.MaxWords <= 0 || ext.MinWords > ext.MaxWords {
		return fmt.Errorf("%w: extraction word band [%d, %d] is invalid", domain.ErrInvalidInput, ext.MinWords, ext.MaxWords)
	}
	if ext.HeadingRatio < 1 {
		return fmt.Errorf("%w: extraction.heading_ratio must be at least 1", domain.ErrInvalidInput)
	}

	a := settings.Analysis
	for name, v := range map[string]float64{
		keyFloor:         a.SimilarityFloor,
		keySupporting:    a.SupportingThreshold,
		keyContradiction: a.ContradictionThreshold,
	} {
		if v < -1 || v > 1 {
			return fmt.Errorf("%w: %s must be within [-1, 1]", domain.ErrInvalidInput, name)
		}
	}
	if a.SimilarityFloor > min(a.SupportingThreshold, a.ContradictionThreshold) {
		return fmt.Errorf("%w: similarity floor must not exceed the label thresholds", domain.ErrInvalidInput)
	}
	if a.MinSentences < 1 || a.MinSentences > a.MaxSentences {
		return fmt.Errorf("%w: sentence range [%d, %d] is invalid", domain.ErrInvalidInput, a.MinSentences, a.MaxSentences)
	}
	if a.MaxResults < 1 || a.MaxResults > MaxResultsCap {
		return fmt.Errorf("%w: analysis.max_results must be within [1, %d]", domain.ErrInvalidInput, MaxResultsCap)
	}

	if tol := settings.Classifier.NumericTolerance; tol < 0 || tol > 1 {
		return fmt.Errorf("%w: classifier.numeric_tolerance must be within [0, 1]", domain.ErrInvalidInput)
	}
	return nil
}

func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig pings the configured embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig pings the configured LLM provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the section pipeline. The word band comes from
// the extraction settings and pipeline.<processor>.<option> keys override it.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	if settings, err := s.Get(); err == nil {
		x := settings.Extraction
		cfg.ProcessorConfigs["sectioner"]["target_words"] = x.TargetWords
		cfg.ProcessorConfigs["wordband"]["min_words"] = x.MinWords
		cfg.ProcessorConfigs["wordband"]["max_words"] = x.MaxWords
	}

	for _, name := range cfg.Processors {
		overrides := s.processorOverrides(name)
		if len(overrides) == 0 {
			continue
		}
		if cfg.ProcessorConfigs[name] == nil {
			cfg.ProcessorConfigs[name] = make(map[string]any, len(overrides))
		}
		maps.Copy(cfg.ProcessorConfigs[name], overrides)
	}
	return cfg
}

// processorOverrides returns the raw pipeline.<name>.* values that are set.
func (s *SettingsService) processorOverrides(name string) map[string]any {
	out := make(map[string]any)
	for _, opt := range processorOptionKeys {
		if v, ok := s.configStore.Get("pipeline." + name + "." + opt); ok {
			out[opt] = v
		}
	}
	return out
}

// apiKey reads a configured key, falling back to the provider's environment
// variable.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	return cmp.Or(s.configStore.GetString(key), s.envKey(provider))
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(envOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(envAnthropicKey)
	default:
		return ""
	}
}
