// Package documents is the library browser: a scrolling document list with
// a per-document action menu.
package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

// ErrNoLibraryService is reported when the view has no library to query.
var ErrNoLibraryService = errors.New("library service not available")

// filters is the Tab cycle. The empty category lists everything.
var filters = []domain.Category{"", domain.CategoryReading, domain.CategoryKnowledgeBase}

type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	help    help.Model
	library driving.LibraryService
	ctx     context.Context

	documents []domain.Document
	filter    int
	selected  int
	offset    int

	menuOpen   bool
	menuCursor ActionOption

	width, height int
	ready         bool
	loading       bool
	notice        string
	err           error
}

func NewView(s *styles.Styles, km *keymap.KeyMap, library driving.LibraryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keys:      km,
		help:      s.NewHelp(),
		library:   library,
		ctx:       context.Background(),
		documents: []domain.Document{},
		width:     80,
		height:    24,
	}
}

func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

func (v *View) Init() tea.Cmd { return nil }

// Load clears the selection and notices and fetches the list again. The
// category filter is kept.
func (v *View) Load() tea.Cmd {
	v.selected, v.offset = 0, 0
	v.err, v.notice = nil, ""
	v.menuOpen = false
	return v.fetch()
}

func (v *View) fetch() tea.Cmd {
	v.loading = true
	ctx, library, category := v.ctx, v.library, v.Filter()
	return func() tea.Msg {
		if library == nil {
			return messages.DocumentsLoaded{Err: ErrNoLibraryService}
		}
		docs, err := library.List(ctx, category)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Filter is the category currently listed, empty for all.
func (v *View) Filter() domain.Category {
	return filters[v.filter]
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		if v.menuOpen {
			return v, v.menuKey(msg)
		}
		return v, v.listKey(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			v.selected = min(v.selected, max(len(v.documents)-1, 0))
			v.keepSelectionVisible()
		}

	case messages.DocumentUpdated:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Document not found: " + msg.DocumentID
		if msg.Found {
			v.notice = msg.Action + ": " + msg.DocumentID
		}
		return v, v.fetch()

	case messages.DocumentsPruned:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Removed %d reading documents", msg.Removed)
		return v, v.fetch()

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) listKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.move(-1)
	case key.Matches(msg, v.keys.Down):
		v.move(1)
	case key.Matches(msg, v.keys.Actions):
		if len(v.documents) > 0 {
			v.menuOpen, v.menuCursor = true, ActionAnalyze
		}
	case key.Matches(msg, v.keys.Back):
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case key.Matches(msg, v.keys.Filter):
		v.filter = (v.filter + 1) % len(filters)
		return v.Load()
	case key.Matches(msg, v.keys.Reload):
		v.notice = ""
		return v.fetch()
	case key.Matches(msg, v.keys.Prune):
		return v.pruneReading()
	}
	return nil
}

func (v *View) move(delta int) {
	if len(v.documents) == 0 {
		return
	}
	v.selected = min(max(v.selected+delta, 0), len(v.documents)-1)
	v.keepSelectionVisible()
}

func (v *View) keepSelectionVisible() {
	rows := v.rows()
	switch {
	case v.selected < v.offset:
		v.offset = v.selected
	case v.selected >= v.offset+rows:
		v.offset = v.selected - rows + 1
	}
}

// rows is how many documents fit between the title and the footer.
func (v *View) rows() int {
	return max(v.height-8, 1)
}

func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.help.Width = width
	v.ready = true
}

func (v *View) Documents() []domain.Document { return v.documents }

func (v *View) SelectedIndex() int { return v.selected }

func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

func (v *View) IsShowingMenu() bool { return v.menuOpen }

// Notice is the outcome of the last action.
func (v *View) Notice() string { return v.notice }

func (v *View) Err() error { return v.err }
