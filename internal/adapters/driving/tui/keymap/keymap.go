// Package keymap holds the TUI key bindings and the hint sets each screen
// shows in its footer.
package keymap

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

var _ help.KeyMap = (*KeyMap)(nil)

// KeyMap groups bindings by the screen that uses them. Some keys, enter in
// particular, mean different things on different screens.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding
	Up   key.Binding
	Down key.Binding

	// Passage and results.
	Analyze    key.Binding
	Open       key.Binding
	NewPassage key.Binding

	// Section reader.
	NextPage key.Binding
	PrevPage key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Library.
	Actions key.Binding
	Filter  key.Binding
	Reload  key.Binding
	Prune   key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),
		Up:   bind("↑/k", "up", "up", "k"),
		Down: bind("↓/j", "down", "down", "j"),

		Analyze:    bind("enter", "analyse", "enter"),
		Open:       bind("enter", "open section", "enter"),
		NewPassage: bind("n", "new passage", "n"),

		NextPage: bind("]", "next page", "]"),
		PrevPage: bind("[", "previous page", "["),
		Top:      bind("g", "top", "g", "home"),
		Bottom:   bind("G", "bottom", "G", "end"),

		Actions: bind("enter", "actions", "enter"),
		Filter:  bind("tab", "filter category", "tab"),
		Reload:  bind("r", "reload", "r"),
		Prune:   bind("p", "prune reading", "p"),
	}
}

// ShortHelp is the hint set while a passage is being typed.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Analyze, k.Back}
}

// ResultsHelp is shown under a snippet list.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewPassage, k.Up, k.Open, k.Back}
}

// LibraryHelp is shown under the document list.
func (k *KeyMap) LibraryHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Actions, k.Filter, k.Reload, k.Prune, k.Back}
}

// SectionHelp is shown in the section reader.
func (k *KeyMap) SectionHelp() []key.Binding {
	return []key.Binding{k.PrevPage, k.NextPage, k.Back}
}

// FullHelp is the help screen, one column per group.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.NewPassage},
		{k.Analyze, k.Back, k.Help, k.Quit},
		{k.PrevPage, k.NextPage, k.Top, k.Bottom},
		{k.Actions, k.Filter, k.Reload, k.Prune},
	}
}
