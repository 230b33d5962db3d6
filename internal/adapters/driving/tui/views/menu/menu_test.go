package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), nil)

	require.NotNil(t, view)
	assert.Len(t, view.Items(), 4)
	assert.Equal(t, 0, view.Selected())
	assert.Equal(t, 80, view.width)
	assert.Equal(t, 24, view.height)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keys)
	assert.Nil(t, view.Init())
}

func TestView_Items(t *testing.T) {
	items := NewView(nil, nil).Items()

	assert.Equal(t, "Analyze", items[0].Label)
	assert.Equal(t, messages.ViewAnalyze, items[0].View)
	assert.Equal(t, "Library", items[1].Label)
	assert.Equal(t, messages.ViewDocuments, items[1].View)
	assert.Equal(t, "Help", items[2].Label)
	assert.Equal(t, messages.ViewHelp, items[2].View)
	assert.True(t, items[3].Quit)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Same(t, view, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, 100, view.width)
	assert.True(t, view.ready)
}

func TestView_Update_Navigation(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		key      tea.KeyMsg
		expected int
	}{
		{"down moves", 0, tea.KeyMsg{Type: tea.KeyDown}, 1},
		{"j moves", 1, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, 2},
		{"down stops at end", 3, tea.KeyMsg{Type: tea.KeyDown}, 3},
		{"up moves", 2, tea.KeyMsg{Type: tea.KeyUp}, 1},
		{"k moves", 1, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, 0},
		{"up stops at top", 0, tea.KeyMsg{Type: tea.KeyUp}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil, nil)
			view.cursor = tt.start

			_, cmd := view.Update(tt.key)

			assert.Nil(t, cmd)
			assert.Equal(t, tt.expected, view.Selected())
		})
	}
}

func TestView_Update_Enter(t *testing.T) {
	tests := []struct {
		selected int
		expected messages.ViewType
	}{
		{0, messages.ViewAnalyze},
		{1, messages.ViewDocuments},
		{2, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			view := NewView(nil, nil)
			view.cursor = tt.selected

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
			require.NotNil(t, cmd)

			changed, ok := cmd().(messages.ViewChanged)
			require.True(t, ok)
			assert.Equal(t, tt.expected, changed.View)
		})
	}
}

func TestView_Update_Quit(t *testing.T) {
	view := NewView(nil, nil)
	view.cursor = 3

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, ok = cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestView_View_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, nil).View())
}

func TestView_View(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)

	output := view.View()

	assert.Contains(t, output, "Lens")
	assert.Contains(t, output, "> 1 Analyze")
	assert.Contains(t, output, "Library")
	assert.Contains(t, output, "[Enter] Select")
	assert.NotContains(t, output, "documents, ")
}

func TestView_View_Stats(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	view.SetStats(domain.LibraryStats{Documents: 3, Sections: 42, Dimensions: 512})

	assert.Contains(t, view.View(), "3 documents, 42 sections indexed (512-dim)")
}

func TestView_View_EmptyLibrary(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	view.SetStats(domain.LibraryStats{})

	assert.Contains(t, view.View(), "Library is empty")
}

func TestView_Update_NumberJumps(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, view.Selected())
	assert.Equal(t, messages.ViewChanged{View: messages.ViewDocuments}, cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, view.Selected())
}

func TestView_Update_HelpKey(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())
}
