// Package ollama generates insight text with a locally served Ollama model.
package ollama

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/llm"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

const (
	DefaultBaseURL = ollamaapi.DefaultBaseURL
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// ErrIncomplete is returned when the server closes a reply without done.
var ErrIncomplete = errors.New("ollama: reply did not complete")

// Config selects the server and model. Zero fields take the defaults.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// KeepAlive is how long the server holds the model after a call,
	// in Ollama duration syntax ("5m", "-1"). Empty leaves the server default.
	KeepAlive string
}

// LLMService sends one non-streaming chat turn per call.
type LLMService struct {
	api       *ollamaapi.Client
	model     string
	keepAlive string
	prompts   driven.PromptStore
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	KeepAlive string        `json:"keep_alive,omitempty"`
	Options   *modelOptions `json:"options,omitempty"`
}

type modelOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatResponse struct {
	Message    chatMessage `json:"message"`
	Done       bool        `json:"done"`
	DoneReason string      `json:"done_reason"`
}

func NewLLMService(cfg Config) *LLMService {
	return &LLMService{
		api:       ollamaapi.New(cfg.BaseURL, cmp.Or(cfg.Timeout, DefaultTimeout)),
		model:     cmp.Or(cfg.Model, DefaultModel),
		keepAlive: cfg.KeepAlive,
	}
}

// Generate returns the assistant reply to prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := chatRequest{
		Model:     s.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		KeepAlive: s.keepAlive,
		Options:   toModelOptions(opts),
	}

	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	if !resp.Done {
		return "", ErrIncomplete
	}
	if resp.DoneReason == "length" {
		logger.Debug("ollama: %s reply hit the token limit", s.model)
	}
	return resp.Message.Content, nil
}

// toModelOptions returns nil when opts is empty, leaving the model defaults.
func toModelOptions(opts driven.GenerateOptions) *modelOptions {
	if opts.MaxTokens <= 0 && opts.Temperature <= 0 && len(opts.StopWords) == 0 {
		return nil
	}
	return &modelOptions{
		NumPredict:  opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.StopWords,
	}
}

func (s *LLMService) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	out, err := s.Generate(ctx, llm.SummarisePrompt(s.prompts, content, maxLength), llm.SummariseOptions(maxLength))
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Ping fails unless the server answers and the model is pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.RequireModel(ctx, s.model)
}

func (s *LLMService) Close() error {
	return nil
}
