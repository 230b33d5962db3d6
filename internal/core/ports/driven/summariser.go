package driven

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// Summariser produces a narrative summary across analysis snippets.
// Failure is never fatal to the analysis response.
type Summariser interface {
	Summarise(ctx context.Context, queryText string, snippets []domain.Snippet) (string, error)
}
