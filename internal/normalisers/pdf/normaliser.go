// Package pdf reads PDF documents into page-located text blocks.
//
// Text is read row by row from each page. The most common font size is
// taken as body text, and rows set noticeably larger become heading
// blocks whose level follows the size ratio.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	// DefaultHeadingRatio is how much larger than body text a line must be
	// to count as a heading.
	DefaultHeadingRatio = 1.1

	// gapFactor is the vertical gap, in line heights, that ends a paragraph.
	gapFactor = 1.8
)

// Normaliser handles PDF documents.
type Normaliser struct {
	headingRatio float64
}

// Option configures the Normaliser.
type Option func(*Normaliser)

// WithHeadingRatio sets the body-size multiple above which a line is a heading.
func WithHeadingRatio(ratio float64) Option {
	return func(n *Normaliser) {
		if ratio > 1 {
			n.headingRatio = ratio
		}
	}
}

// New creates a new PDF normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{headingRatio: DefaultHeadingRatio}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts text blocks from a PDF.
// Encrypted, damaged and textless files yield ExtractionErrors.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (result *driven.NormaliseResult, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if len(raw.Content) == 0 {
		return nil, domain.NewExtractionError(raw.URI, domain.ExtractionCorrupt, errors.New("empty file"))
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = domain.NewExtractionError(raw.URI, domain.ExtractionCorrupt, fmt.Errorf("parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, domain.NewExtractionError(raw.URI, domain.ExtractionEncrypted, err)
		}
		return nil, domain.NewExtractionError(raw.URI, domain.ExtractionCorrupt, err)
	}

	numPages := reader.NumPage()
	var lines []line
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, domain.NewExtractionError(raw.URI, domain.ExtractionCorrupt,
				fmt.Errorf("page %d: %w", i, err))
		}
		lines = append(lines, rowsToLines(rows, i)...)
	}

	blocks := buildBlocks(lines, n.headingRatio)
	if len(blocks) == 0 {
		return nil, domain.NewExtractionError(raw.URI, domain.ExtractionEmpty, nil)
	}

	return &driven.NormaliseResult{
		Title:     extractTitle(blocks, raw),
		PageCount: numPages,
		Blocks:    blocks,
	}, nil
}

// line is one visual row of text on a page.
type line struct {
	text string
	size float64
	y    float64
	page int
}

// rowsToLines flattens parser rows into lines, keeping the dominant font
// size of each row.
func rowsToLines(rows pdf.Rows, pageNum int) []line {
	lines := make([]line, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		sizes := make(map[float64]int)
		var lastX, lastW float64
		for i, t := range row.Content {
			// Insert a space where the parser left a visible horizontal gap.
			if i > 0 && t.X-(lastX+lastW) > t.FontSize*0.2 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.S)
			sizes[roundSize(t.FontSize)] += len(strings.TrimSpace(t.S))
			lastX, lastW = t.X, t.W
		}
		text := normalisers.CollapseWhitespace(sb.String())
		if text == "" {
			continue
		}
		lines = append(lines, line{
			text: text,
			size: dominantSize(sizes),
			y:    float64(row.Position),
			page: pageNum,
		})
	}
	return lines
}

// buildBlocks groups lines into heading and paragraph blocks.
func buildBlocks(lines []line, headingRatio float64) []domain.TextBlock {
	if len(lines) == 0 {
		return nil
	}

	body := bodySize(lines)
	lineHeight := typicalGap(lines)

	var blocks []domain.TextBlock
	var para []string
	var paraPage int
	var paraSize float64
	var prev *line

	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, domain.TextBlock{
				Text:     strings.Join(para, " "),
				Page:     paraPage,
				FontSize: paraSize,
			})
			para = nil
		}
	}

	for i := range lines {
		ln := &lines[i]
		level := headingLevel(ln, body, headingRatio)

		if level > 0 {
			flush()
			// Consecutive heading rows at the same level form one heading.
			if last := len(blocks) - 1; last >= 0 && prev != nil && prev.page == ln.page &&
				blocks[last].Level == level && !gapBreak(prev, ln, lineHeight) {
				blocks[last].Text += " " + ln.text
			} else {
				blocks = append(blocks, domain.TextBlock{
					Text:     ln.text,
					Page:     ln.page,
					FontSize: ln.size,
					Level:    level,
				})
			}
			prev = ln
			continue
		}

		if prev != nil && (prev.page != ln.page || gapBreak(prev, ln, lineHeight)) {
			flush()
		}
		if len(para) == 0 {
			paraPage = ln.page
			paraSize = ln.size
		}
		para = append(para, joinHyphenated(para, ln.text)...)
		prev = ln
	}
	flush()

	return dropBoilerplate(blocks)
}

// joinHyphenated merges a line that continues a word hyphenated at the end
// of the previous line.
func joinHyphenated(para []string, text string) []string {
	if n := len(para); n > 0 && strings.HasSuffix(para[n-1], "-") && len(para[n-1]) > 1 {
		para[n-1] = strings.TrimSuffix(para[n-1], "-") + text
		return nil
	}
	return []string{text}
}

func dropBoilerplate(blocks []domain.TextBlock) []domain.TextBlock {
	kept := blocks[:0]
	for _, b := range blocks {
		if !normalisers.IsBoilerplate(b.Text) {
			kept = append(kept, b)
		}
	}
	return kept
}

// headingLevel returns 1..4 for heading rows and 0 for body text.
func headingLevel(ln *line, body, ratio float64) int {
	if body <= 0 || ln.size <= body*ratio {
		return 0
	}
	if normalisers.WordCount(ln.text) < 2 || normalisers.IsBoilerplate(ln.text) {
		return 0
	}
	r := ln.size / body
	switch {
	case r >= 2.0:
		return 1
	case r >= 1.5:
		return 2
	case r >= 1.3:
		return 3
	default:
		return 4
	}
}

// gapBreak reports a paragraph break between two rows on the same page.
// Rows run top to bottom with decreasing y.
func gapBreak(prev, cur *line, lineHeight float64) bool {
	if lineHeight <= 0 || prev.page != cur.page {
		return false
	}
	return math.Abs(prev.y-cur.y) > gapFactor*lineHeight
}

// bodySize is the most common font size weighted by text length.
func bodySize(lines []line) float64 {
	weights := make(map[float64]int)
	for _, ln := range lines {
		weights[ln.size] += len(ln.text)
	}
	return dominantSize(weights)
}

// typicalGap is the median vertical distance between consecutive rows
// on the same page.
func typicalGap(lines []line) float64 {
	var gaps []float64
	for i := 1; i < len(lines); i++ {
		if lines[i].page != lines[i-1].page {
			continue
		}
		if d := math.Abs(lines[i-1].y - lines[i].y); d > 0 {
			gaps = append(gaps, d)
		}
	}
	if len(gaps) == 0 {
		return 0
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}

func dominantSize(weights map[float64]int) float64 {
	var best float64
	bestWeight := -1
	for size, w := range weights {
		if w > bestWeight || (w == bestWeight && size < best) {
			best, bestWeight = size, w
		}
	}
	return best
}

// roundSize buckets font sizes to half points.
func roundSize(size float64) float64 {
	return math.Round(size*2) / 2
}

// extractTitle prefers the first level-1 heading on page one, then the
// metadata title, then the file name.
func extractTitle(blocks []domain.TextBlock, raw *domain.RawDocument) string {
	for _, b := range blocks {
		if b.Page > 1 {
			break
		}
		if b.Level == 1 {
			return b.Text
		}
	}
	return normalisers.DocumentTitle(raw)
}
