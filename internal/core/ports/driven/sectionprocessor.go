package driven

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// SectionProcessor turns normalised blocks into sections or reshapes them.
// Processors are chained in a pipeline (e.g., sectioning, word-band enforcement).
type SectionProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the normalised document and the sections so far.
	// A processor that creates sections (e.g., sectioner) receives nil.
	// A processor that reshapes them returns the new slice.
	Process(ctx context.Context, doc *NormaliseResult, sections []domain.Section) ([]domain.Section, error)
}

// SectionPipeline chains multiple SectionProcessors.
type SectionPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc *NormaliseResult) ([]domain.Section, error)
}
