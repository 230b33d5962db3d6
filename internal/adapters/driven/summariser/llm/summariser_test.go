package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

type fakeLLM struct {
	prompt string
	opts   driven.GenerateOptions
	out    string
	err    error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.prompt = prompt
	f.opts = opts
	return f.out, f.err
}

func (f *fakeLLM) Summarise(context.Context, string, int) (string, error) { return "", nil }
func (f *fakeLLM) ModelName() string                                      { return "fake" }
func (f *fakeLLM) Ping(context.Context) error                             { return nil }
func (f *fakeLLM) Close() error                                           { return nil }

type prompts map[string]string

func (p prompts) Load(name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", errors.New("missing")
}
func (p prompts) Reload() {}

var snippets = []domain.Snippet{
	{Rank: 1, DocumentName: "b.txt", Page: 2, Label: domain.LabelContradictory, Extract: "Emissions  increase\nslightly."},
	{Rank: 2, DocumentName: "a.txt", Label: domain.LabelSupporting, Extract: "Emissions fell."},
}

func TestSummarise(t *testing.T) {
	model := &fakeLLM{out: "  B disagrees with A.  "}
	s := New(model, nil)

	out, err := s.Summarise(context.Background(), "Renewables cut emissions.", snippets)
	require.NoError(t, err)
	assert.Equal(t, "B disagrees with A.", out)
	assert.Contains(t, model.prompt, `"Renewables cut emissions."`)
	assert.Contains(t, model.prompt, "1. [contradictory] b.txt, p.2: Emissions increase slightly.")
	assert.Contains(t, model.prompt, "2. [supporting] a.txt: Emissions fell.")
	assert.Equal(t, maxTokens, model.opts.MaxTokens)
}

func TestSummarise_CustomPrompt(t *testing.T) {
	model := &fakeLLM{out: "ok"}
	s := New(model, prompts{driven.PromptInsightSummary: "Q=%s\n%s"})

	_, err := s.Summarise(context.Background(), "q", snippets[:1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(model.prompt, "Q=q\n1. [contradictory]"))
}

func TestSummarise_Errors(t *testing.T) {
	_, err := New(nil, nil).Summarise(context.Background(), "q", snippets)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	_, err = New(&fakeLLM{}, nil).Summarise(context.Background(), "q", nil)
	assert.Error(t, err)

	cause := errors.New("timeout")
	_, err = New(&fakeLLM{err: cause}, nil).Summarise(context.Background(), "q", snippets)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "a b", clip(" a\n b ", 10))
	assert.Equal(t, "abc…", clip("abcdef", 3))
}
