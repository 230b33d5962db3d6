// Package wordband keeps every section inside a word-count band.
//
// Oversized sections are split at sentence boundaries, undersized ones are
// merged into a neighbour, and anything still too small is dropped.
package wordband

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/normalisers"
)

// Ensure Processor implements the interface.
var _ driven.SectionProcessor = (*Processor)(nil)

// Default band limits.
const (
	DefaultMinWords = 8
	DefaultMaxWords = 400
)

const joinSep = "\n\n"

var wordPattern = regexp.MustCompile(`\S+`)

// Processor enforces the [min, max] word band.
type Processor struct {
	minWords int
	maxWords int
}

// Option configures the processor.
type Option func(*Processor)

// WithMinWords sets the smallest section kept.
func WithMinWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.minWords = n
		}
	}
}

// WithMaxWords sets the largest section before splitting.
func WithMaxWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxWords = n
		}
	}
}

// New creates a word-band processor.
func New(opts ...Option) *Processor {
	p := &Processor{minWords: DefaultMinWords, maxWords: DefaultMaxWords}
	for _, opt := range opts {
		opt(p)
	}
	if p.minWords > p.maxWords {
		p.minWords = p.maxWords
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "wordband"
}

// Process splits and merges sections so each has between min and max words.
func (p *Processor) Process(_ context.Context, _ *driven.NormaliseResult, sections []domain.Section) ([]domain.Section, error) {
	var split []domain.Section
	for i := range sections {
		sec := sections[i]
		sec.WordCount = normalisers.WordCount(sec.Body)
		if sec.WordCount > p.maxWords {
			split = append(split, p.split(sec)...)
			continue
		}
		if sec.WordCount > 0 {
			split = append(split, sec)
		}
	}

	merged := p.merge(split)
	for i := range merged {
		merged[i].Order = i
	}
	return merged, nil
}

// split cuts an oversized section at the last sentence boundary that fits.
// Sentences longer than the band are cut on word boundaries.
func (p *Processor) split(sec domain.Section) []domain.Section {
	var units []domain.Span
	for _, s := range domain.SentenceSpans(sec.Body) {
		if normalisers.WordCount(sec.Body[s.Start:s.End]) > p.maxWords {
			units = append(units, p.wordChunks(sec.Body, s)...)
			continue
		}
		units = append(units, s)
	}

	var pieces []domain.Section
	start := -1
	end, words := 0, 0
	emit := func() {
		if start >= 0 {
			pieces = append(pieces, slice(sec, start, end))
		}
		start, words = -1, 0
	}

	for _, u := range units {
		n := normalisers.WordCount(sec.Body[u.Start:u.End])
		if start >= 0 && words+n > p.maxWords {
			emit()
		}
		if start < 0 {
			start = u.Start
		}
		end = u.End
		words += n
	}
	emit()

	return pieces
}

// wordChunks cuts one span into runs of at most maxWords words.
func (p *Processor) wordChunks(body string, span domain.Span) []domain.Span {
	locs := wordPattern.FindAllStringIndex(body[span.Start:span.End], -1)
	var chunks []domain.Span
	for i := 0; i < len(locs); i += p.maxWords {
		last := min(i+p.maxWords, len(locs)) - 1
		chunks = append(chunks, domain.Span{
			Start: span.Start + locs[i][0],
			End:   span.Start + locs[last][1],
		})
	}
	return chunks
}

// merge folds undersized sections into the previous section when the
// result fits, otherwise into the next one. Leftovers are dropped.
func (p *Processor) merge(sections []domain.Section) []domain.Section {
	out := make([]domain.Section, 0, len(sections))
	for i := 0; i < len(sections); i++ {
		sec := sections[i]
		if sec.WordCount >= p.minWords {
			out = append(out, sec)
			continue
		}
		if last := len(out) - 1; last >= 0 && out[last].WordCount+sec.WordCount <= p.maxWords {
			out[last] = join(out[last], sec)
			continue
		}
		if i+1 < len(sections) && sec.WordCount+sections[i+1].WordCount <= p.maxWords {
			sections[i+1] = join(sec, sections[i+1])
		}
	}
	return out
}

// slice returns the part of sec covering body[start:end], keeping its title.
func slice(sec domain.Section, start, end int) domain.Section {
	piece := sec
	piece.Body = sec.Body[start:end]
	piece.WordCount = normalisers.WordCount(piece.Body)
	piece.Page = sec.PageAt(start)
	piece.EndPage = sec.PageAt(end - 1)

	piece.Marks = []domain.PageMark{{Offset: 0, Page: piece.Page}}
	for _, m := range sec.Marks {
		if m.Offset > start && m.Offset < end {
			piece.Marks = append(piece.Marks, domain.PageMark{Offset: m.Offset - start, Page: m.Page})
		}
	}
	return piece
}

// join appends b to a. The first non-empty title wins.
func join(a, b domain.Section) domain.Section {
	out := a
	if strings.TrimSpace(out.Title) == "" {
		out.Title = b.Title
		out.Level = b.Level
		out.FontSize = b.FontSize
	}

	offset := len(a.Body) + len(joinSep)
	out.Body = a.Body + joinSep + b.Body
	out.WordCount = a.WordCount + b.WordCount
	out.EndPage = b.EndPage

	out.Marks = append([]domain.PageMark(nil), marksOf(a)...)
	for _, m := range marksOf(b) {
		if m.Page == out.Marks[len(out.Marks)-1].Page {
			continue
		}
		out.Marks = append(out.Marks, domain.PageMark{Offset: offset + m.Offset, Page: m.Page})
	}
	return out
}

func marksOf(s domain.Section) []domain.PageMark {
	if len(s.Marks) > 0 {
		return s.Marks
	}
	return []domain.PageMark{{Offset: 0, Page: s.Page}}
}
