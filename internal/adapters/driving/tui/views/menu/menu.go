// Package menu is the start screen.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// Item is one entry. An item with Quit set exits instead of switching view.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

func defaultItems() []Item {
	return []Item{
		{Label: "Analyze", Hint: "find related passages", View: messages.ViewAnalyze},
		{Label: "Library", Hint: "browse and read documents", View: messages.ViewDocuments},
		{Label: "Help", View: messages.ViewHelp},
		{Label: "Quit", Quit: true},
	}
}

type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	items  []Item
	cursor int
	stats  *domain.LibraryStats
	width  int
	height int
	ready  bool
}

func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keys: km, items: defaultItems(), width: 80, height: 24}
}

func (v *View) Init() tea.Cmd { return nil }

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.cursor = min(v.cursor+1, len(v.items)-1)
	case msg.Type == tea.KeyEnter:
		return v.activate(v.cursor)
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Help):
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	default:
		// 1-9 jump straight to an item.
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(v.items) {
			v.cursor = n - 1
			return v.activate(v.cursor)
		}
	}
	return nil
}

func (v *View) activate(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Lens") + "\n\n")
	b.WriteString(v.styles.Muted.Render("Cross-document discovery for your reading") + "\n")
	if v.stats != nil {
		b.WriteString(v.styles.Muted.Render(describeStats(*v.stats)) + "\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		prefix, label := "  ", v.styles.Normal.Render(item.Label)
		if i == v.cursor {
			prefix, label = "> ", v.styles.Selected.Render(item.Label)
		}
		line := fmt.Sprintf("%s%s %s", prefix, v.styles.Muted.Render(strconv.Itoa(i+1)), label)
		if item.Hint != "" {
			line += "  " + v.styles.Muted.Render(item.Hint)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [1-" +
		strconv.Itoa(len(v.items)) + "] Jump  [?] Help  [q] Quit"))
	return b.String()
}

func describeStats(s domain.LibraryStats) string {
	if s.Documents == 0 {
		return "Library is empty, add documents to start"
	}
	out := fmt.Sprintf("%d documents, %d sections indexed", s.Documents, s.Sections)
	if s.Dimensions > 0 {
		out += fmt.Sprintf(" (%d-dim)", s.Dimensions)
	}
	return out
}

// SetStats sets the library summary shown under the title.
func (v *View) SetStats(stats domain.LibraryStats) {
	v.stats = &stats
}

func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int { return v.cursor }

func (v *View) Items() []Item { return v.items }
