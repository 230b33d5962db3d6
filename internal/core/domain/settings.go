package domain

import "time"

// AIProvider names a backend for embeddings or text generation.
type AIProvider string

const (
	AIProviderLocal     AIProvider = "local" // built-in hashing embedder, no network
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

type providerTraits struct {
	description string
	needsKey    bool
	local       bool
	embeds      bool
	generates   bool
}

// providerOrder is the order providers are offered in.
var providerOrder = []AIProvider{AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}

var providers = map[AIProvider]providerTraits{
	AIProviderLocal:     {description: "Local (built-in hashing embedder)", local: true, embeds: true},
	AIProviderOllama:    {description: "Ollama (local)", local: true, embeds: true, generates: true},
	AIProviderOpenAI:    {description: "OpenAI (cloud)", needsKey: true, embeds: true, generates: true},
	AIProviderAnthropic: {description: "Anthropic (cloud)", needsKey: true, generates: true},
}

func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

func (p AIProvider) RequiresAPIKey() bool { return providers[p].needsKey }

// IsLocal reports whether the provider runs on this machine.
func (p AIProvider) IsLocal() bool { return providers[p].local }

func (p AIProvider) SupportsEmbeddings() bool { return providers[p].embeds }

func (p AIProvider) SupportsLLM() bool { return providers[p].generates }

func (p AIProvider) String() string { return string(p) }

func (p AIProvider) Description() string {
	if t, ok := providers[p]; ok {
		return t.description
	}
	return "Unknown"
}

func providersWhere(keep func(providerTraits) bool) []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if keep(providers[p]) {
			out = append(out, p)
		}
	}
	return out
}

func AllEmbeddingProviders() []AIProvider {
	return providersWhere(func(t providerTraits) bool { return t.embeds })
}

func AllLLMProviders() []AIProvider {
	return providersWhere(func(t providerTraits) bool { return t.generates })
}

// EmbeddingSettings select the oracle that turns text into vectors.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string // Ollama or an OpenAI-compatible server
	APIKey   string

	// Dimensions overrides the model's vector size when non-zero.
	Dimensions int

	// RequestsPerSecond throttles oracle calls; zero is unlimited.
	RequestsPerSecond float64
	Burst             int
}

// IsConfigured is true when Provider is known and has its key. It does not
// check that the provider can embed, so the factory can say why it cannot.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.IsValid() && hasKey(e.Provider, e.APIKey)
}

// LLMSettings select the optional model behind insight summaries.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

func (l LLMSettings) IsConfigured() bool {
	return l.Provider.SupportsLLM() && hasKey(l.Provider, l.APIKey)
}

func hasKey(p AIProvider, key string) bool {
	return !p.RequiresAPIKey() || key != ""
}

// ExtractionSettings bounds the size of extracted sections.
type ExtractionSettings struct {
	// MinWords is the smallest section body that is kept.
	MinWords int

	// MaxWords is the largest section body. Longer sections are split
	// on sentence boundaries.
	MaxWords int

	// TargetWords is the chunk size used when a document has no headings.
	TargetWords int

	// HeadingRatio is how much larger than body text a line must be to
	// count as a heading.
	HeadingRatio float64
}

// AnalysisSettings tunes candidate retrieval, classification and snippets.
// Thresholds operate on the raw cosine scale [-1, 1].
type AnalysisSettings struct {
	SimilarityFloor        float64
	SupportingThreshold    float64
	ContradictionThreshold float64

	// CandidateMultiplier sets K = multiplier x maxResults for retrieval.
	CandidateMultiplier int
	MaxResults          int

	MinSentences int
	MaxSentences int
	ExtractChars int

	Timeout        time.Duration
	SummaryTimeout time.Duration
}

// ClassifierSettings configures the heuristic classifier.
type ClassifierSettings struct {
	// LexiconPath points at an optional YAML lexicon merged into the built-in one.
	LexiconPath string

	// NumericTolerance is the relative difference at which two numbers on
	// the same quantity are considered to disagree.
	NumericTolerance float64
}

// LibrarySettings configures where uploaded documents live.
type LibrarySettings struct {
	// Path is the directory holding uploaded document content.
	Path string

	// DefaultCategory is applied when an upload names no category.
	DefaultCategory Category
}

// AppSettings is the whole of config.toml.
type AppSettings struct {
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Extraction ExtractionSettings
	Analysis   AnalysisSettings
	Classifier ClassifierSettings
	Library    LibrarySettings
}

// DefaultAppSettings work offline: the local embedder is selected and no LLM
// is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
			Burst:    1,
		},
		LLM:        LLMSettings{},
		Extraction: DefaultExtractionSettings(),
		Analysis:   DefaultAnalysisSettings(),
		Classifier: ClassifierSettings{
			NumericTolerance: 0.1,
		},
		Library: LibrarySettings{
			DefaultCategory: CategoryKnowledgeBase,
		},
	}
}

// DefaultExtractionSettings returns the default section size band.
func DefaultExtractionSettings() ExtractionSettings {
	return ExtractionSettings{
		MinWords:     8,
		MaxWords:     400,
		TargetWords:  250,
		HeadingRatio: 1.1,
	}
}

// DefaultAnalysisSettings returns the default analysis tuning.
func DefaultAnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		SimilarityFloor:        0.35,
		SupportingThreshold:    0.65,
		ContradictionThreshold: 0.45,
		CandidateMultiplier:    4,
		MaxResults:             5,
		MinSentences:           2,
		MaxSentences:           4,
		ExtractChars:           480,
		Timeout:                10 * time.Second,
		SummaryTimeout:         5 * time.Second,
	}
}

// DefaultEmbeddingModels is the model picked when a provider is selected
// without one.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-tf",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions maps known embedding models to their native vector size.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-tf":             512,
		"all-minilm":             384,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"text-embedding-3-small": 1536,
		"text-embedding-ada-002": 1536,
		"text-embedding-3-large": 3072,
	}
}

// PipelineConfig lists the section processors to run, in order, with an
// option map per processor name.
type PipelineConfig struct {
	Processors       []string
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns nil for a processor with no options.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig sizes sections from DefaultExtractionSettings.
func DefaultPipelineConfig() PipelineConfig {
	ext := DefaultExtractionSettings()
	return PipelineConfig{
		Processors: []string{"sectioner", "wordband"},
		ProcessorConfigs: map[string]map[string]any{
			"sectioner": {"target_words": ext.TargetWords},
			"wordband":  {"min_words": ext.MinWords, "max_words": ext.MaxWords},
		},
	}
}
