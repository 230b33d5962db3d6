package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// chatServer answers /api/chat with reply and records each request.
func chatServer(t *testing.T, reply string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.api.BaseURL())
	assert.NoError(t, svc.Close())
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, `{"message":{"role":"assistant","content":"ok"},"done":true}`, &got)
	svc := NewLLMService(Config{BaseURL: srv.URL, Model: "mistral", KeepAlive: "10m"})

	out, err := svc.Generate(context.Background(), "hi", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "mistral", got.Model)
	assert.Equal(t, "10m", got.KeepAlive)
	assert.False(t, got.Stream)
	assert.Nil(t, got.Options)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, chatMessage{Role: "user", Content: "hi"}, got.Messages[0])

	_, err = svc.Generate(context.Background(), "hi", driven.GenerateOptions{MaxTokens: 10, StopWords: []string{"\n"}})
	require.NoError(t, err)
	require.NotNil(t, got.Options)
	assert.Equal(t, 10, got.Options.NumPredict)
	assert.Equal(t, []string{"\n"}, got.Options.Stop)
}

func TestGenerate_Incomplete(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, `{"message":{"role":"assistant","content":"partial"},"done":false}`, &got)

	_, err := NewLLMService(Config{BaseURL: srv.URL}).Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestGenerate_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	_, err := NewLLMService(Config{BaseURL: srv.URL}).Generate(context.Background(), "x", driven.GenerateOptions{})
	var apiErr *ollamaapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "model not found", apiErr.Message)
}

func TestSummarise(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, `{"message":{"role":"assistant","content":"\n summary \n"},"done":true}`, &got)

	out, err := NewLLMService(Config{BaseURL: srv.URL}).Summarise(context.Background(), "content", 200)
	require.NoError(t, err)
	assert.Equal(t, "summary", out)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "200 characters")
	assert.Equal(t, 50, got.Options.NumPredict)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewLLMService(Config{BaseURL: srv.URL}).Ping(context.Background()))
	assert.ErrorIs(t, NewLLMService(Config{BaseURL: srv.URL, Model: "mistral"}).Ping(context.Background()),
		ollamaapi.ErrModelNotPulled)
	assert.Error(t, NewLLMService(Config{BaseURL: srv.URL + "/x"}).Ping(context.Background()))
}
