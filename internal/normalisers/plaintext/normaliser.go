// Package plaintext normalises .txt, .log and .csv files. Blank lines end a
// paragraph and a form feed starts a new page. Plain text carries no
// headings, so the sectioner falls back to fixed-size chunks.
package plaintext

import (
	"bytes"
	"context"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/normalisers"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// fallbackPriority keeps format-specific normalisers ahead of this one.
const fallbackPriority = 5

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/x-log", "text/csv"}
}

func (n *Normaliser) Priority() int {
	return fallbackPriority
}

// Normalise emits one block per paragraph. Invalid UTF-8 is dropped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ToValidUTF8(string(bytes.TrimPrefix(raw.Content, utf8BOM)), "")
	pages := normalisers.SplitPages(text)

	var blocks []domain.TextBlock
	for i, page := range pages {
		for _, para := range normalisers.SplitParagraphs(page) {
			blocks = append(blocks, domain.TextBlock{Text: para, Page: i + 1})
		}
	}
	if len(blocks) == 0 {
		return nil, domain.NewExtractionError(raw.URI, domain.ExtractionEmpty, nil)
	}

	return &driven.NormaliseResult{
		Title:     normalisers.DocumentTitle(raw),
		PageCount: len(pages),
		Blocks:    blocks,
	}, nil
}
