package sectioner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

func process(t *testing.T, p *Processor, blocks ...domain.TextBlock) []domain.Section {
	t.Helper()
	sections, err := p.Process(context.Background(), &driven.NormaliseResult{Blocks: blocks}, nil)
	require.NoError(t, err)
	return sections
}

func TestNew(t *testing.T) {
	assert.Equal(t, DefaultTargetWords, New().targetWords)
	assert.Equal(t, 40, New(WithTargetWords(40)).targetWords)
	assert.Equal(t, DefaultTargetWords, New(WithTargetWords(0)).targetWords)
	assert.Equal(t, "sectioner", New().Name())
}

func TestProcess_HeadingsOpenSections(t *testing.T) {
	sections := process(t, New(),
		domain.TextBlock{Text: "Preface text before any heading.", Page: 1},
		domain.TextBlock{Text: "Remote Work", Page: 1, Level: 1, FontSize: 20},
		domain.TextBlock{Text: "Remote work increases productivity.", Page: 1},
		domain.TextBlock{Text: "Teams report fewer interruptions.", Page: 2},
		domain.TextBlock{Text: "Office Culture", Page: 3, Level: 2},
		domain.TextBlock{Text: "Office time builds trust.", Page: 3},
	)

	require.Len(t, sections, 3)

	assert.Empty(t, sections[0].Title)
	assert.Equal(t, "Preface text before any heading.", sections[0].Body)

	assert.Equal(t, "Remote Work", sections[1].Title)
	assert.Equal(t, 1, sections[1].Level)
	assert.InDelta(t, 20, sections[1].FontSize, 1e-9)
	assert.Equal(t, "Remote work increases productivity.\n\nTeams report fewer interruptions.", sections[1].Body)
	assert.Equal(t, 1, sections[1].Page)
	assert.Equal(t, 2, sections[1].EndPage)
	assert.Equal(t, 8, sections[1].WordCount)
	assert.Equal(t, 2, sections[1].PageAt(len("Remote work increases productivity.\n\n")))

	assert.Equal(t, "Office Culture", sections[2].Title)
	assert.Equal(t, 3, sections[2].Page)

	for i, s := range sections {
		assert.Equal(t, i, s.Order)
	}
}

func TestProcess_PageIsFirstBodyBlockPage(t *testing.T) {
	sections := process(t, New(),
		domain.TextBlock{Text: "Chapter Two", Page: 4, Level: 1},
		domain.TextBlock{Text: "The body starts on the next page.", Page: 5},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, 5, sections[0].Page)
	assert.Equal(t, 5, sections[0].EndPage)
}

func TestProcess_EmptyHeadingSuperseded(t *testing.T) {
	sections := process(t, New(),
		domain.TextBlock{Text: "Part One", Page: 1, Level: 1},
		domain.TextBlock{Text: "Introduction", Page: 1, Level: 2},
		domain.TextBlock{Text: "The actual body text.", Page: 1},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "Introduction", sections[0].Title)
}

func TestProcess_DropsBoilerplate(t *testing.T) {
	sections := process(t, New(),
		domain.TextBlock{Text: "Page 1", Page: 1},
		domain.TextBlock{Text: "Date: 2026-01-01", Page: 1},
		domain.TextBlock{Text: "  Real   content here.  ", Page: 1},
		domain.TextBlock{Text: "7", Page: 1},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "Real content here.", sections[0].Body)
}

func TestProcess_FallbackPacking(t *testing.T) {
	sections := process(t, New(WithTargetWords(6)),
		domain.TextBlock{Text: "one two three four", Page: 1},
		domain.TextBlock{Text: "five six", Page: 1},
		domain.TextBlock{Text: "seven eight nine", Page: 2},
		domain.TextBlock{Text: "ten eleven twelve thirteen fourteen fifteen sixteen", Page: 2},
	)

	require.Len(t, sections, 3)
	assert.Equal(t, "one two three four\n\nfive six", sections[0].Body)
	assert.Equal(t, 6, sections[0].WordCount)
	assert.Equal(t, "seven eight nine", sections[1].Body)
	assert.Equal(t, 2, sections[1].Page)
	assert.Equal(t, 7, sections[2].WordCount, "an oversized paragraph is left for wordband")
	for _, s := range sections {
		assert.Empty(t, s.Title)
	}
}

func TestProcess_NoBlocks(t *testing.T) {
	sections := process(t, New())
	assert.Nil(t, sections)
}
