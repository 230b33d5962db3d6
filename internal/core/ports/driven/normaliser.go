package driven

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// Normaliser reads one family of formats into page-located text blocks.
//
// When several normalisers claim a MIME type the highest Priority wins.
// Format-specific implementations sit in 50-89 and fallbacks in 1-9.
// Damaged, encrypted or textless input yields a *domain.ExtractionError.
type Normaliser interface {
	SupportedMIMETypes() []string
	Priority() int
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult is a document before sectioning.
type NormaliseResult struct {
	Title     string
	PageCount int // 1 for formats without pages

	// Blocks are in reading order. Headings carry a non-zero Level.
	Blocks []domain.TextBlock
}

// NormaliserRegistry dispatches on RawDocument.MIMEType. An unclaimed type
// yields an ExtractionError with reason unsupported.
type NormaliserRegistry interface {
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
	Register(normaliser Normaliser)
	SupportedMIMETypes() []string
}
