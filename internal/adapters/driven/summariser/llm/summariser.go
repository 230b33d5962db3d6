// Package llm narrates analysis results with a language model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	llmprompt "github.com/custodia-labs/sercha-lens/internal/adapters/driven/llm"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.Summariser = (*Summariser)(nil)

const (
	defaultInsightPrompt = `A reader selected this passage:

"%s"

Excerpts from other documents in their library follow, each labelled supporting, contradictory or related.

%s

In two or three sentences, say what the library says about the passage. Mention disagreements first. Refer to documents by name.`

	// maxExtractChars bounds each excerpt in the prompt.
	maxExtractChars = 400
	maxTokens       = 200
)

// Summariser turns snippets into a short narrative.
type Summariser struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// New returns a summariser backed by llm. prompts may be nil.
func New(llm driven.LLMService, prompts driven.PromptStore) *Summariser {
	return &Summariser{llm: llm, prompts: prompts}
}

// Summarise fills the insight_summary template and asks the model for a narrative.
func (s *Summariser) Summarise(ctx context.Context, queryText string, snippets []domain.Snippet) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if len(snippets) == 0 {
		return "", errors.New("no snippets to summarise")
	}

	template := llmprompt.LoadPrompt(s.prompts, driven.PromptInsightSummary, defaultInsightPrompt)
	prompt := fmt.Sprintf(template, clip(queryText, maxExtractChars), formatSnippets(snippets))

	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return strings.TrimSpace(out), nil
}

// formatSnippets renders one numbered line per snippet:
// "1. [contradictory] report.pdf, p.3: extract".
func formatSnippets(snippets []domain.Snippet) string {
	var b strings.Builder
	for i, sn := range snippets {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, sn.Label, sn.DocumentName)
		if sn.Page > 0 {
			fmt.Fprintf(&b, ", p.%d", sn.Page)
		}
		b.WriteString(": ")
		b.WriteString(clip(sn.Extract, maxExtractChars))
	}
	return b.String()
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
