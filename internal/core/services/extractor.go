package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

// Extraction is the structured representation of one document.
type Extraction struct {
	Title     string
	PageCount int
	Sections  []domain.Section
}

// SectionExtractor parses raw document content into ordered, addressable
// sections. It is a pure transform and persists nothing.
type SectionExtractor struct {
	registry driven.NormaliserRegistry
	pipeline driven.SectionPipeline
}

// NewSectionExtractor creates a new section extractor.
func NewSectionExtractor(registry driven.NormaliserRegistry, pipeline driven.SectionPipeline) *SectionExtractor {
	return &SectionExtractor{
		registry: registry,
		pipeline: pipeline,
	}
}

// Extract normalises the raw document and runs the section pipeline.
//
// Corrupt, encrypted, textless and unsupported documents yield a
// *domain.ExtractionError. Section IDs are derived from the document ID and
// ordinal, so re-extracting identical content yields identical IDs.
func (e *SectionExtractor) Extract(ctx context.Context, documentID string, raw *domain.RawDocument) (*Extraction, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: raw document is nil", domain.ErrInvalidInput)
	}
	defer logger.Timer("extract " + raw.Name)()

	normalised, err := e.registry.Normalise(ctx, raw)
	if err != nil {
		if _, ok := domain.AsExtractionError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("normalise %s: %w", raw.URI, err)
	}
	logger.Debug("Normalised %s: %d blocks over %d pages", raw.Name, len(normalised.Blocks), normalised.PageCount)

	sections, err := e.pipeline.Process(ctx, normalised)
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", raw.URI, err)
	}

	out := make([]domain.Section, 0, len(sections))
	for i := range sections {
		sec := sections[i]
		sec.Body = strings.TrimSpace(sec.Body)
		if sec.Body == "" {
			continue
		}
		sec.Marks = nil
		if sec.Page < 1 {
			sec.Page = 1
		}
		if sec.EndPage < sec.Page {
			sec.EndPage = sec.Page
		}
		sec.Order = len(out)
		sec.DocumentID = documentID
		sec.ID = SectionID(documentID, sec.Order)
		out = append(out, sec)
	}

	if len(out) == 0 {
		return nil, domain.NewExtractionError(raw.URI, domain.ExtractionEmpty, nil)
	}

	pages := normalised.PageCount
	if pages < 1 {
		pages = 1
	}
	logger.Debug("Extracted %d sections from %s", len(out), raw.Name)

	return &Extraction{
		Title:     normalised.Title,
		PageCount: pages,
		Sections:  out,
	}, nil
}

// SectionID returns the stable ID of the section at ordinal within a document.
func SectionID(documentID string, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("lens:"+documentID+"#"+strconv.Itoa(ordinal))).String()
}
