// Package openai generates insight text with the OpenAI chat completions API.
package openai

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/llm"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/openaiapi"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

const (
	DefaultBaseURL    = openaiapi.DefaultBaseURL
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// ErrNoChoices is returned when a completion carries no choices.
var ErrNoChoices = errors.New("openai: no completion choices returned")

// Config selects the account and chat model. BaseURL may point at any
// OpenAI-compatible server.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService is a driven.LLMService backed by chat completions.
type LLMService struct {
	client  *openai.Client
	model   string
	prompts driven.PromptStore
}

func NewLLMService(cfg Config) (*LLMService, error) {
	client, err := openaiapi.NewClient(openaiapi.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return &LLMService{client: client, model: cmp.Or(cfg.Model, DefaultModel)}, nil
}

// Generate sends prompt as one user message and returns the first choice.
// A reply cut short by the token limit is returned as is.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		Stop:        opts.StopWords,
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		logger.Debug("openai: %s reply truncated at %d tokens", s.model, opts.MaxTokens)
	}
	return choice.Message.Content, nil
}

func (s *LLMService) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	out, err := s.Generate(ctx, llm.SummarisePrompt(s.prompts, content, maxLength), llm.SummariseOptions(maxLength))
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (s *LLMService) ModelName() string { return s.model }

func (s *LLMService) SetPromptStore(store driven.PromptStore) { s.prompts = store }

func (s *LLMService) Ping(ctx context.Context) error {
	return openaiapi.Ping(ctx, s.client)
}

func (s *LLMService) Close() error { return nil }
