// Package sectioner groups normalised text blocks into sections.
//
// Headings open sections and body blocks fill them. Documents without any
// heading are packed into untitled sections of roughly a target word count.
package sectioner

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/normalisers"
)

// Ensure Processor implements the interface.
var _ driven.SectionProcessor = (*Processor)(nil)

// DefaultTargetWords is the fallback chunk size for heading-less documents.
const DefaultTargetWords = 250

// paragraphSep joins blocks inside a section body.
const paragraphSep = "\n\n"

// Processor builds sections from text blocks.
type Processor struct {
	targetWords int
}

// Option configures the sectioner.
type Option func(*Processor)

// WithTargetWords sets the fallback chunk size in words.
func WithTargetWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.targetWords = n
		}
	}
}

// New creates a new sectioner with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{targetWords: DefaultTargetWords}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sectioner"
}

// Process creates sections from doc.Blocks. Input sections are ignored.
func (p *Processor) Process(_ context.Context, doc *driven.NormaliseResult, _ []domain.Section) ([]domain.Section, error) {
	blocks := cleanBlocks(doc.Blocks)
	if len(blocks) == 0 {
		return nil, nil
	}

	var sections []domain.Section
	if hasHeadings(blocks) {
		sections = byHeadings(blocks)
	} else {
		sections = p.packed(blocks)
	}

	for i := range sections {
		sections[i].Order = i
		sections[i].WordCount = normalisers.WordCount(sections[i].Body)
	}
	return sections, nil
}

// cleanBlocks collapses whitespace and drops boilerplate.
func cleanBlocks(blocks []domain.TextBlock) []domain.TextBlock {
	cleaned := make([]domain.TextBlock, 0, len(blocks))
	for _, b := range blocks {
		b.Text = normalisers.CollapseWhitespace(b.Text)
		if b.Text == "" || normalisers.IsBoilerplate(b.Text) {
			continue
		}
		if b.Page < 1 {
			b.Page = 1
		}
		cleaned = append(cleaned, b)
	}
	return cleaned
}

func hasHeadings(blocks []domain.TextBlock) bool {
	for _, b := range blocks {
		if b.IsHeading() {
			return true
		}
	}
	return false
}

// byHeadings opens a section at every heading. Body text before the first
// heading forms an untitled section. A heading with no body of its own is
// superseded by the next heading.
func byHeadings(blocks []domain.TextBlock) []domain.Section {
	var sections []domain.Section
	var cur *domain.Section

	closeCurrent := func() {
		if cur != nil && cur.Body != "" {
			sections = append(sections, *cur)
		}
		cur = nil
	}

	for _, b := range blocks {
		if b.IsHeading() {
			closeCurrent()
			cur = &domain.Section{
				Title:    b.Text,
				Level:    b.Level,
				FontSize: b.FontSize,
				Page:     b.Page,
				EndPage:  b.Page,
			}
			continue
		}
		if cur == nil {
			cur = &domain.Section{Page: b.Page, EndPage: b.Page}
		}
		appendBlock(cur, b)
	}
	closeCurrent()

	return sections
}

// packed groups paragraphs into untitled sections of about targetWords.
func (p *Processor) packed(blocks []domain.TextBlock) []domain.Section {
	var sections []domain.Section
	cur := &domain.Section{}
	words := 0

	for _, b := range blocks {
		n := normalisers.WordCount(b.Text)
		if cur.Body != "" && words+n > p.targetWords {
			sections = append(sections, *cur)
			cur = &domain.Section{}
			words = 0
		}
		appendBlock(cur, b)
		words += n
	}
	if cur.Body != "" {
		sections = append(sections, *cur)
	}
	return sections
}

// appendBlock adds body text to s, tracking where pages change.
func appendBlock(s *domain.Section, b domain.TextBlock) {
	if s.Body == "" {
		s.Body = b.Text
		s.Page = b.Page
		s.EndPage = b.Page
		s.Marks = []domain.PageMark{{Offset: 0, Page: b.Page}}
		return
	}

	var sb strings.Builder
	sb.WriteString(s.Body)
	sb.WriteString(paragraphSep)
	offset := sb.Len()
	sb.WriteString(b.Text)
	s.Body = sb.String()

	if b.Page != s.EndPage {
		s.Marks = append(s.Marks, domain.PageMark{Offset: offset, Page: b.Page})
	}
	s.EndPage = b.Page
}
