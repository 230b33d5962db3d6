// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// SnippetList displays labelled analysis snippets in a navigable list.
type SnippetList struct {
	snippets []domain.Snippet
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSnippetList creates a new snippet list component.
func NewSnippetList(s *styles.Styles) *SnippetList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SnippetList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *SnippetList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *SnippetList) Update(msg tea.Msg) (*SnippetList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the snippet list.
func (r *SnippetList) View() string {
	if len(r.snippets) == 0 {
		return r.styles.Muted.Render("No related sections")
	}

	lines := make([]string, 0, len(r.snippets)+2)

	header := r.styles.Subtitle.Render(fmt.Sprintf("Snippets (%d)", len(r.snippets)))
	lines = append(lines, header, "")

	// Each snippet takes 3 lines plus a blank separator
	visibleCount := max((r.height-4)/4, 1)

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.snippets))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderSnippet(i, &r.snippets[i]), "")
	}

	return strings.Join(lines, "\n")
}

// renderSnippet formats one snippet as a header line, location and extract.
func (r *SnippetList) renderSnippet(index int, s *domain.Snippet) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	badge := r.styles.Badge(s.Label)
	name := truncate(s.DocumentName, max(r.width-30, 10))
	header := fmt.Sprintf("%s%d. %s  ", indicator, s.Rank, name)

	var headerLine string
	if index == r.selected {
		headerLine = r.styles.Selected.Render(header) + badge
	} else {
		headerLine = r.styles.Normal.Render(header) + badge
	}
	headerLine += "  " + r.styles.ScoreBar(s.Score, 8)

	location := r.styles.Subtitle.Render(fmt.Sprintf("    %s, p.%d", truncate(s.Title, max(r.width-16, 10)), s.Page))
	extract := r.styles.Muted.Render("    " + truncate(s.Extract, max(r.width-6, 20)))

	return headerLine + "\n" + location + "\n" + extract
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetSnippets replaces the snippets and resets the selection.
func (r *SnippetList) SetSnippets(snippets []domain.Snippet) {
	r.snippets = snippets
	r.selected = 0
}

// Snippets returns the current snippets.
func (r *SnippetList) Snippets() []domain.Snippet {
	return r.snippets
}

// Selected returns the index of the selected snippet.
func (r *SnippetList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *SnippetList) SetSelected(index int) {
	if index >= 0 && index < len(r.snippets) {
		r.selected = index
	}
}

// SelectedSnippet returns the selected snippet, or nil if none.
func (r *SnippetList) SelectedSnippet() *domain.Snippet {
	if len(r.snippets) == 0 || r.selected < 0 || r.selected >= len(r.snippets) {
		return nil
	}
	return &r.snippets[r.selected]
}

// MoveUp moves selection up.
func (r *SnippetList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *SnippetList) MoveDown() {
	if r.selected < len(r.snippets)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *SnippetList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of snippets.
func (r *SnippetList) Count() int {
	return len(r.snippets)
}

// IsEmpty returns whether the list is empty.
func (r *SnippetList) IsEmpty() bool {
	return len(r.snippets) == 0
}
