package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

type stubStore map[string]string

func (s stubStore) Load(name string) (string, error) {
	p, ok := s[name]
	if !ok {
		return "", errors.New("missing")
	}
	return p, nil
}

func (s stubStore) Reload() {}

func TestLoadPrompt(t *testing.T) {
	assert.Equal(t, "fallback", LoadPrompt(nil, "x", "fallback"))
	assert.Equal(t, "fallback", LoadPrompt(stubStore{}, "x", "fallback"))
	assert.Equal(t, "fallback", LoadPrompt(stubStore{"x": "  "}, "x", "fallback"))
	assert.Equal(t, "custom", LoadPrompt(stubStore{"x": "custom"}, "x", "fallback"))
}

func TestSummarisePrompt(t *testing.T) {
	got := SummarisePrompt(nil, "body text", 120)
	assert.Contains(t, got, "120 characters")
	assert.Contains(t, got, "body text")

	custom := stubStore{driven.PromptSummarise: "%d|%s"}
	assert.Equal(t, "50|abc", SummarisePrompt(custom, "abc", 50))
}

func TestSummariseOptions(t *testing.T) {
	assert.Equal(t, 100, SummariseOptions(400).MaxTokens)
	assert.Equal(t, 16, SummariseOptions(10).MaxTokens)
	assert.InDelta(t, 0.3, SummariseOptions(400).Temperature, 1e-9)
}
