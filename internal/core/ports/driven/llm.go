package driven

import "context"

// LLMService writes the optional narrative over an analysis. Lens works
// without one; the summary then falls back to label counts.
type LLMService interface {
	Provider

	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Summarise condenses content to at most maxLength characters.
	Summarise(ctx context.Context, content string, maxLength int) (string, error)
}

// GenerateOptions tunes a single Generate call. Zero values leave the
// provider default in place.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}
