package driving

import "github.com/custodia-labs/sercha-lens/internal/core/domain"

// SettingsService reads and edits config.toml.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// Set parses value for the dotted key and stores it. Unknown keys and
	// values outside their allowed range are rejected.
	Set(key, value string) error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// ClearLLMProvider turns narrative summaries off.
	ClearLLMProvider() error

	Validate() error
	GetDefaults() domain.AppSettings

	// GetPipelineConfig merges [extraction] and [pipeline.*] into the
	// section pipeline layout.
	GetPipelineConfig() domain.PipelineConfig

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// providers.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
