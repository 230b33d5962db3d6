package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/views/analyze"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/views/section"
)

// App routes messages between the lens screens. Background results go to
// the view that asked for them; key presses go to the active view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	menuView      *menu.View
	analyzeView   *analyze.View
	documentsView *documents.View
	sectionView   *section.View

	currentView   messages.ViewType
	err           error
	width, height int
	ready         bool
}

var _ tea.Model = (*App)(nil)

// NewApp builds every view up front so switching screens keeps their state.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	app := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keys:          km,
		menuView:      menu.NewView(s, km),
		analyzeView:   analyze.NewView(s, km, ports.Analysis, ports.Library),
		documentsView: documents.NewView(s, km, ports.Library),
		sectionView:   section.NewView(s, km, ports.Library),
		currentView:   messages.ViewMenu,
	}
	app.menuView.SetStats(ports.Library.Stats())
	return app, nil
}

// WithContext scopes every service call the views make to ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.analyzeView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.sectionView.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tea.SetWindowTitle("lens"))
}

//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if key.Matches(msg, a.keys.Back) {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.SourceSelected:
		doc := msg.Document
		a.analyzeView.Reset()
		a.analyzeView.SetSource(&doc)
		a.currentView = messages.ViewAnalyze
		return a, a.analyzeView.Init()

	case messages.SectionRequested:
		a.currentView = messages.ViewSection
		return a, a.sectionView.Open(msg)

	case messages.AnalysisCompleted:
		a.err = msg.Err
		a.analyzeView, cmd = a.analyzeView.Update(msg)
		return a, cmd

	case messages.SectionLoaded:
		a.sectionView, cmd = a.sectionView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentUpdated, messages.DocumentsPruned:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateCurrent(msg)
}

// switchTo activates view and returns the command that loads its data.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	prev := a.currentView
	a.currentView = view
	switch view {
	case messages.ViewMenu:
		a.menuView.SetStats(a.ports.Library.Stats())
	case messages.ViewAnalyze:
		// Returning from a section keeps the snippets on screen
		if prev == messages.ViewSection {
			return nil
		}
		a.analyzeView.Reset()
		a.analyzeView.SetSource(nil)
		return a.analyzeView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Load()
	case messages.ViewSection, messages.ViewHelp:
	}
	return nil
}

// updateCurrent forwards msg to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAnalyze:
		a.analyzeView, cmd = a.analyzeView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewSection:
		a.sectionView, cmd = a.sectionView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAnalyze:
		return a.analyzeView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewSection:
		return a.sectionView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	h := a.styles.NewHelp()
	h.ShowAll = true

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help") + "\n\n")
	b.WriteString(a.styles.Muted.Render("Type or paste a passage on the Analyze screen, then press enter.") + "\n")
	b.WriteString(a.styles.Muted.Render("Scroll a section with the arrow keys or PgUp/PgDn.") + "\n\n")
	b.WriteString(h.View(a.keys) + "\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

func (a *App) CurrentView() messages.ViewType { return a.currentView }

// Err is the last error reported by a background command.
func (a *App) Err() error { return a.err }

// Ready is false until the first window size arrives.
func (a *App) Ready() bool { return a.ready }

// SetDimensions resizes every view, including the hidden ones.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.analyzeView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.sectionView.SetDimensions(width, height)
}
