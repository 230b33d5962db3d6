// Package anthropic generates insight text with the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/llm"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-haiku-latest"
	DefaultTimeout = 60 * time.Second

	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 1024
	maxErrorBody     = 4 << 10
)

// ErrEmptyReply is returned when a reply carries no text blocks.
var ErrEmptyReply = errors.New("anthropic: no response content returned")

// Config selects the account and model. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// APIError is a failed Messages API call.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("anthropic error (status %d, %s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("anthropic error (status %d): %s", e.StatusCode, e.Message)
}

// LLMService is a driven.LLMService backed by Claude.
type LLMService struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	prompts driven.PromptStore
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
	StopSeqs    []string  `json:"stop_sequences,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// NewLLMService validates cfg and fills in defaults.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	return &LLMService{
		http:    &http.Client{Timeout: cmp.Or(cfg.Timeout, DefaultTimeout)},
		baseURL: strings.TrimRight(cmp.Or(cfg.BaseURL, DefaultBaseURL), "/"),
		apiKey:  cfg.APIKey,
		model:   cmp.Or(cfg.Model, DefaultModel),
	}, nil
}

// Generate sends prompt as a single user turn and joins the text blocks of
// the reply.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := messagesRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   cmp.Or(opts.MaxTokens, defaultMaxTokens),
		Temperature: opts.Temperature,
		StopSeqs:    opts.StopWords,
	}
	var resp messagesResponse
	if err := s.call(ctx, http.MethodPost, "/v1/messages", req, &resp); err != nil {
		return "", err
	}
	return joinText(resp.Content)
}

func joinText(blocks []contentBlock) (string, error) {
	var b strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyReply
	}
	return b.String(), nil
}

// Summarise renders the summarise prompt for content.
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

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.call(ctx, http.MethodGet, "/v1/models", nil, nil); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

func (s *LLMService) Close() error {
	return nil
}

// call performs one authenticated request. A nil in sends no body and a nil
// out discards the response.
func (s *LLMService) call(ctx context.Context, method, path string, in, out any) error {
	body := io.Reader(http.NoBody)
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError reads {"error": {"type", "message"}}, falling back to the raw body.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var env struct {
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Error != nil {
		apiErr.Kind = env.Error.Type
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
