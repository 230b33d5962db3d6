// Package openaiapi builds go-openai clients for the OpenAI adapters and
// OpenAI-compatible servers.
package openaiapi

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the public OpenAI endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// ErrInvalidKey is returned by Ping when the server rejects the API key.
var ErrInvalidKey = errors.New("invalid API key")

// Config is what every OpenAI adapter needs to reach the server.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewClient checks cfg and builds a client. fallbackTimeout applies when
// cfg.Timeout is zero.
func NewClient(cfg Config, fallbackTimeout time.Duration) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cmp.Or(cfg.BaseURL, DefaultBaseURL), "/")
	clientCfg.HTTPClient = &http.Client{Timeout: cmp.Or(cfg.Timeout, fallbackTimeout)}
	return openai.NewClientWithConfig(clientCfg), nil
}

// Ping lists models, which checks the key without running inference.
func Ping(ctx context.Context, client *openai.Client) error {
	_, err := client.ListModels(ctx)
	if err == nil {
		return nil
	}
	if StatusCode(err) == http.StatusUnauthorized {
		return fmt.Errorf("openai: ping failed: %w", ErrInvalidKey)
	}
	return fmt.Errorf("openai: ping failed: %w", err)
}

// StatusCode returns the HTTP status behind a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
