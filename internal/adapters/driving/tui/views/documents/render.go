package documents

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.title()) + "\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents...") + "\n\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: "+v.err.Error()) + "\n\n")
	case v.menuOpen:
		return b.String() + v.renderMenu()
	default:
		if v.notice != "" {
			b.WriteString(v.styles.Muted.Render(v.notice) + "\n\n")
		}
		b.WriteString(v.renderList())
	}

	b.WriteString(v.help.ShortHelpView(v.keys.LibraryHelp()))
	return b.String()
}

func (v *View) title() string {
	if f := v.Filter(); f != "" {
		return fmt.Sprintf("Library: %s (%d)", f.Description(), len(v.documents))
	}
	return fmt.Sprintf("Library (%d)", len(v.documents))
}

func (v *View) renderList() string {
	if len(v.documents) == 0 {
		return v.styles.Muted.Render("No documents in the library. Run 'lens add' to upload some.") + "\n\n"
	}

	var b strings.Builder
	end := min(v.offset+v.rows(), len(v.documents))
	for i := v.offset; i < end; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i]) + "\n")
	}
	if len(v.documents) > v.rows() {
		b.WriteString("\n" + v.styles.Muted.Render(
			fmt.Sprintf("  [%d-%d of %d]", v.offset+1, end, len(v.documents))))
	}
	b.WriteString("\n\n")
	return b.String()
}

// renderDocument lays out one row: cursor, name clipped to half the width,
// then category and counts.
func (v *View) renderDocument(index int, doc *domain.Document) string {
	width := max(v.width/2-4, 10)
	name := clip(doc.DisplayName(), width)

	category := "reading"
	if doc.Category == domain.CategoryKnowledgeBase {
		category = "kb"
	}
	detail := fmt.Sprintf("%-8s %3d pages %4d sections", category, doc.PageCount, doc.SectionCount)
	if !doc.IsIndexed() {
		detail += "  (not indexed)"
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", width, name, detail))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", width, name)) + v.styles.Muted.Render(detail)
}

// clip shortens s to n runes, ending in "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func (v *View) renderMenu() string {
	doc := v.documents[v.selected]

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Actions for: "+doc.DisplayName()) + "\n\n")
	for a := ActionAnalyze; a <= ActionCancel; a++ {
		if a == v.menuCursor {
			b.WriteString(v.styles.Selected.Render("> "+a.label(doc)) + "\n")
		} else {
			b.WriteString(v.styles.Normal.Render("  "+a.label(doc)) + "\n")
		}
	}
	b.WriteString("\n" + v.help.ShortHelpView([]key.Binding{v.keys.Up, v.keys.Down, v.keys.Actions, v.keys.Back}))
	return b.String()
}
