// Package analyze provides the passage analysis view for the TUI.
package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

// View is the analysis view: a passage input, the labelled snippets and a
// status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.PassageInput
	list      *list.SnippetList
	statusbar *status.Bar

	analysisService driving.AnalysisService
	libraryService  driving.LibraryService
	ctx             context.Context

	// sourceID is the document passages come from. Empty means the most
	// recent reading document.
	sourceID string
	source   *domain.Document
	summary  string

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = snippet mode (navigating)
}

// NewView creates a new analysis view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	analysisService driving.AnalysisService,
	libraryService driving.LibraryService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewPassageInput(s),
		list:            list.NewSnippetList(s),
		statusbar:       status.NewBar(s, km),
		analysisService: analysisService,
		libraryService:  libraryService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		focusInput:      true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// SetSource sets the document passages are taken from.
func (v *View) SetSource(doc *domain.Document) {
	if doc == nil {
		v.sourceID = ""
		v.source = nil
		return
	}
	v.sourceID = doc.ID
	v.source = doc
}

// Update handles messages for the analysis view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnalysisCompleted:
		v.handleAnalysisCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Enter in input mode submits the passage
	if msg.Type == tea.KeyEnter && v.focusInput {
		passage := strings.TrimSpace(v.input.Value())
		if passage == "" {
			return v, nil
		}
		v.statusbar.SetState(status.StateAnalysing)
		v.statusbar.SetMessage("")
		if v.source != nil {
			v.statusbar.SetSource(v.source.DisplayName())
		}
		v.focusInput = false
		v.input.Blur()
		return v, v.performAnalysis(passage)
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Snippet mode: Enter opens the snippet's section
	if msg.Type == tea.KeyEnter {
		if snippet := v.list.SelectedSnippet(); snippet != nil {
			return v, openSnippet(snippet)
		}
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keymap.NewPassage):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	}

	return v, nil
}

func openSnippet(s *domain.Snippet) tea.Cmd {
	req := messages.SectionRequested{
		Request: domain.NavigationRequest{
			DocumentID: s.DocumentID,
			Page:       s.Page,
			SectionID:  s.SectionID,
		},
		Name: s.DocumentName,
		Back: messages.ViewAnalyze,
	}
	return func() tea.Msg { return req }
}

// performAnalysis resolves the source and runs the analysis.
func (v *View) performAnalysis(passage string) tea.Cmd {
	ctx := v.ctx
	sourceID := v.sourceID
	return func() tea.Msg {
		if v.analysisService == nil || v.libraryService == nil {
			return messages.ErrorOccurred{Err: ErrNoAnalysisService}
		}

		source, err := v.libraryService.SourceDocument(ctx, sourceID, true)
		if err != nil {
			return messages.AnalysisCompleted{Err: fmt.Errorf("source document: %w", err)}
		}

		result, err := v.analysisService.Analyze(ctx, domain.AnalysisRequest{
			Text:             passage,
			SourceDocumentID: source.ID,
		})
		return messages.AnalysisCompleted{Source: source, Result: result, Err: err}
	}
}

// handleAnalysisCompleted shows the snippets of a finished analysis.
func (v *View) handleAnalysisCompleted(msg messages.AnalysisCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		// Back to typing so the passage can be retried
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	if msg.Source != nil {
		v.source = msg.Source
	}
	v.summary = ""
	var snippets []domain.Snippet
	if v.source != nil {
		v.statusbar.SetSource(v.source.DisplayName())
	}
	if msg.Result != nil {
		snippets = msg.Result.Snippets
		v.summary = msg.Result.Summary
	}
	v.list.SetSnippets(snippets)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResult(msg.Result)

	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the analysis view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)

	sections = append(sections, v.styles.Title.Render("Lens"))
	source := "latest reading document"
	if v.source != nil {
		source = v.source.DisplayName()
	}
	sections = append(sections, v.styles.Muted.Render("Source: "+source), "")

	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.summary != "" {
		sections = append(sections, v.styles.Passage.Width(max(v.width-4, 20)).Render(v.summary), "")
	}

	sections = append(sections, v.list.View())

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-12) // Header, source, input, summary and status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Passage returns the current passage text.
func (v *View) Passage() string {
	return v.input.Value()
}

// SetPassage sets the passage text.
func (v *View) SetPassage(passage string) {
	v.input.SetValue(passage)
}

// Snippets returns the snippets of the last analysis.
func (v *View) Snippets() []domain.Snippet {
	return v.list.Snippets()
}

// SelectedIndex returns the index of the selected snippet.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Source returns the source document, or nil for the default.
func (v *View) Source() *domain.Document {
	return v.source
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with an empty passage.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetSnippets(nil)
	v.summary = ""
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
