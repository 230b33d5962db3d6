// Package llm holds helpers shared by the LLM service adapters.
package llm

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// DefaultSummarisePrompt is used when no PromptStore is configured.
const DefaultSummarisePrompt = `Summarise the following content in %d characters or less.
Be concise and capture the key points.

Content:
%s

Summary:`

// LoadPrompt returns the named template from store, or fallback when the
// store is nil or cannot supply it.
func LoadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// SummarisePrompt renders the summarise template for content.
func SummarisePrompt(store driven.PromptStore, content string, maxLength int) string {
	return fmt.Sprintf(LoadPrompt(store, driven.PromptSummarise, DefaultSummarisePrompt), maxLength, content)
}

// SummariseOptions sizes generation for a summary of maxLength characters.
func SummariseOptions(maxLength int) driven.GenerateOptions {
	tokens := maxLength / 4 // roughly 4 chars per token
	if tokens < 16 {
		tokens = 16
	}
	return driven.GenerateOptions{MaxTokens: tokens, Temperature: 0.3}
}
