package driving

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// AnalysisService finds sections elsewhere in the library that relate to a
// reader's selection.
type AnalysisService interface {
	// Analyze embeds the selection, retrieves similar sections from other
	// documents, labels them and returns ranked snippets with a summary.
	// An empty selection returns an empty result without error.
	// Returns domain.ErrServiceUnavailable if the embedding oracle or the
	// index cannot serve the request.
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}
