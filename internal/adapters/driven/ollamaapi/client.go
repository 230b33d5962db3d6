// Package ollamaapi is a minimal client for the Ollama REST API shared by
// the embedding and LLM adapters.
package ollamaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where a local Ollama listens.
const DefaultBaseURL = "http://localhost:11434"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// ErrModelNotPulled means the server is up but the model is not installed.
var ErrModelNotPulled = errors.New("model not pulled")

// APIError is a non-200 response from Ollama.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to one Ollama server.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends in as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Get fetches path and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readError extracts {"error": "..."} when present, else the raw body.
func readError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// Models lists the names of the installed models.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := c.Get(ctx, "/api/tags", &tags); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// RequireModel checks the server is reachable and model is installed.
// A bare name matches any tag, so "llama3.2" matches "llama3.2:latest".
func (c *Client) RequireModel(ctx context.Context, model string) error {
	names, err := c.Models(ctx)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	for _, name := range names {
		if name == model || strings.TrimSuffix(name, ":latest") == model ||
			(!strings.Contains(model, ":") && strings.HasPrefix(name, model+":")) {
			return nil
		}
	}
	return fmt.Errorf("ollama: %w: %s (run 'ollama pull %s')", ErrModelNotPulled, model, model)
}
