package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Keys(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"analyze", km.Analyze, []string{"enter"}},
		{"open", km.Open, []string{"enter"}},
		{"new passage", km.NewPassage, []string{"n"}},
		{"next page", km.NextPage, []string{"]"}},
		{"previous page", km.PrevPage, []string{"["}},
		{"top", km.Top, []string{"g", "home"}},
		{"bottom", km.Bottom, []string{"G", "end"}},
		{"actions", km.Actions, []string{"enter"}},
		{"filter", km.Filter, []string{"tab"}},
		{"reload", km.Reload, []string{"r"}},
		{"prune", km.Prune, []string{"p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Key)
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestHintSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []key.Binding{km.Analyze, km.Back}, km.ShortHelp())

	results := km.ResultsHelp()
	require.Len(t, results, 4)
	assert.Equal(t, km.NewPassage, results[0])
	assert.Equal(t, km.Open, results[2])

	assert.Contains(t, km.LibraryHelp(), km.Prune)
	assert.Equal(t, []key.Binding{km.PrevPage, km.NextPage, km.Back}, km.SectionHelp())
}

func TestFullHelp_CoversEveryBinding(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()
	require.Len(t, groups, 4)
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	assert.Equal(t, 16, n)
}

func TestBindings_MatchKeyMsgs(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, km.Up))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyTab}, km.Filter))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyDown}, km.Up))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, km.Quit))
}
