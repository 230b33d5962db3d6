// Package mcp provides an MCP (Model Context Protocol) server adapter for Lens.
// It lets AI assistants analyse passages against the local library.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

var (
	// ErrMissingAnalysisService is returned when the analysis service is not provided.
	ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

	// ErrMissingLibraryService is returned when the library service is not provided.
	ErrMissingLibraryService = errors.New("mcp: library service is required")
)

// toolError prepares err for the client. The SDK reports handler errors
// as failed tool calls. Errors from a missing embedder or index are
// reported as the service being unavailable.
func toolError(err error) error {
	if isDegraded(err) && !errors.Is(err, domain.ErrServiceUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}
	return err
}

func isDegraded(err error) bool {
	return errors.Is(err, domain.ErrServiceUnavailable) ||
		errors.Is(err, domain.ErrEmbeddingUnavailable) ||
		errors.Is(err, domain.ErrVectorIndexUnavailable)
}
