package documents

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// ActionOption is an entry in the per-document menu, in display order.
type ActionOption int

const (
	ActionAnalyze ActionOption = iota
	ActionRead
	ActionReindex
	ActionToggleCategory
	ActionRemove
	ActionCancel
)

// needsLibrary reports whether a runs against the library service.
func (a ActionOption) needsLibrary() bool {
	return a >= ActionReindex && a <= ActionRemove
}

// label is the menu text for a applied to doc.
func (a ActionOption) label(doc domain.Document) string {
	switch a {
	case ActionAnalyze:
		return "Analyze passages from this document"
	case ActionRead:
		return "Read"
	case ActionReindex:
		return "Reindex"
	case ActionToggleCategory:
		if doc.Category == domain.CategoryKnowledgeBase {
			return "Move to reading"
		}
		return "Move to knowledge base"
	case ActionRemove:
		return "Remove"
	default:
		return "Cancel"
	}
}

func (v *View) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.menuCursor = max(v.menuCursor-1, ActionAnalyze)
	case key.Matches(msg, v.keys.Down):
		v.menuCursor = min(v.menuCursor+1, ActionCancel)
	case msg.Type == tea.KeyEnter:
		v.menuOpen = false
		if doc := v.SelectedDocument(); doc != nil {
			return v.run(v.menuCursor, *doc)
		}
	case key.Matches(msg, v.keys.Back):
		v.menuOpen = false
	}
	return nil
}

func (v *View) run(a ActionOption, doc domain.Document) tea.Cmd {
	if a.needsLibrary() && v.library == nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: ErrNoLibraryService} }
	}

	switch a {
	case ActionAnalyze:
		return func() tea.Msg { return messages.SourceSelected{Document: doc} }
	case ActionRead:
		req := messages.SectionRequested{
			Request: domain.NavigationRequest{DocumentID: doc.ID, Page: 1},
			Name:    doc.DisplayName(),
			Back:    messages.ViewDocuments,
		}
		return func() tea.Msg { return req }
	case ActionReindex:
		return v.update(doc.ID, "Reindexed", v.library.OnDocumentIndexed)
	case ActionToggleCategory:
		return v.moveCategory(doc)
	case ActionRemove:
		return v.update(doc.ID, "Removed", v.library.OnDocumentRemoved)
	}
	return nil
}

func (v *View) update(id, action string, fn func(context.Context, string) (bool, error)) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		found, err := fn(ctx, id)
		return messages.DocumentUpdated{DocumentID: id, Action: action, Found: found, Err: err}
	}
}

func (v *View) moveCategory(doc domain.Document) tea.Cmd {
	target := domain.CategoryKnowledgeBase
	if doc.Category == domain.CategoryKnowledgeBase {
		target = domain.CategoryReading
	}
	ctx, library := v.ctx, v.library
	return func() tea.Msg {
		err := library.SetCategory(ctx, doc.ID, target)
		if errors.Is(err, domain.ErrNotFound) {
			return messages.DocumentUpdated{DocumentID: doc.ID}
		}
		return messages.DocumentUpdated{
			DocumentID: doc.ID,
			Action:     "Moved to " + target.Description(),
			Found:      true,
			Err:        err,
		}
	}
}

func (v *View) pruneReading() tea.Cmd {
	ctx, library := v.ctx, v.library
	return func() tea.Msg {
		if library == nil {
			return messages.DocumentsPruned{Err: ErrNoLibraryService}
		}
		n, err := library.ClearReading(ctx)
		return messages.DocumentsPruned{Removed: n, Err: err}
	}
}
