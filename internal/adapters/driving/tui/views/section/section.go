// Package section provides the section reader view for the TUI.
package section

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

// ErrNoLibraryService is reported when a section is opened without a library.
var ErrNoLibraryService = errors.New("library service not available")

// reservedLines is the height taken by the header, separator and footer.
const reservedLines = 7

// View shows one section of a document and pages through the document.
type View struct {
	styles         *styles.Styles
	keymap         *keymap.KeyMap
	libraryService driving.LibraryService
	ctx            context.Context
	viewport       viewport.Model
	help           help.Model

	request domain.NavigationRequest
	name    string
	back    messages.ViewType
	section *domain.Section
	notice  string

	width   int
	height  int
	ready   bool
	loading bool
	err     error
}

// NewView creates a new section view.
func NewView(s *styles.Styles, km *keymap.KeyMap, libraryService driving.LibraryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:         s,
		keymap:         km,
		libraryService: libraryService,
		ctx:            context.Background(),
		viewport:       viewport.New(76, 24-reservedLines),
		help:           s.NewHelp(),
		back:           messages.ViewMenu,
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open starts loading the requested location.
func (v *View) Open(msg messages.SectionRequested) tea.Cmd {
	v.request = msg.Request
	v.name = msg.Name
	v.back = msg.Back
	v.section = nil
	v.notice = ""
	v.err = nil
	v.viewport.SetContent("")
	v.viewport.GotoTop()
	return v.load(msg.Request)
}

func (v *View) load(req domain.NavigationRequest) tea.Cmd {
	v.loading = true
	ctx := v.ctx
	library := v.libraryService
	return func() tea.Msg {
		if library == nil {
			return messages.SectionLoaded{Err: ErrNoLibraryService}
		}
		sec, err := library.Navigate(ctx, req)
		return messages.SectionLoaded{Section: sec, Err: err}
	}
}

// Update handles messages for the section view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SectionLoaded:
		v.handleLoaded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleLoaded(msg messages.SectionLoaded) {
	v.loading = false
	if msg.Err != nil {
		v.err = msg.Err
		return
	}
	if msg.Section == nil {
		v.err = domain.ErrNotFound
		return
	}

	// Paging past the last page lands on the section already shown
	if v.section != nil && v.section.ID == msg.Section.ID {
		v.notice = "End of document"
		return
	}

	v.err = nil
	v.notice = ""
	v.section = msg.Section
	v.request.Page = msg.Section.Page
	v.request.SectionID = msg.Section.ID
	v.render()
	v.viewport.GotoTop()
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}

	case key.Matches(msg, v.keymap.NextPage):
		if v.section == nil || v.loading {
			return v, nil
		}
		return v, v.load(domain.NavigationRequest{
			DocumentID: v.section.DocumentID,
			Page:       max(v.section.EndPage, v.section.Page) + 1,
		})

	case key.Matches(msg, v.keymap.PrevPage):
		if v.section == nil || v.loading {
			return v, nil
		}
		if v.section.Page <= 1 {
			v.notice = "Start of document"
			return v, nil
		}
		return v, v.load(domain.NavigationRequest{
			DocumentID: v.section.DocumentID,
			Page:       v.section.Page - 1,
		})

	case key.Matches(msg, v.keymap.Top):
		v.viewport.GotoTop()
		return v, nil

	case key.Matches(msg, v.keymap.Bottom):
		v.viewport.GotoBottom()
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render rewraps the section body to the viewport width.
func (v *View) render() {
	if v.section == nil {
		v.viewport.SetContent("")
		return
	}
	body := lipgloss.NewStyle().Width(v.viewport.Width).Render(v.section.Body)
	v.viewport.SetContent(v.styles.Normal.Render(body))
}

// View renders the section view.
func (v *View) View() string {
	var b strings.Builder

	title := v.name
	if title == "" {
		title = v.request.DocumentID
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")

	switch {
	case v.section != nil:
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%s  %s",
			v.section.DisplayTitle(), pageLabel(v.section))))
	case v.request.Page > 0:
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("p.%d", v.request.Page)))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n")

	switch {
	case v.loading && v.section == nil:
		b.WriteString(v.styles.Muted.Render("Loading section..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.section == nil:
		b.WriteString(v.styles.Muted.Render("(No section)"))
	default:
		b.WriteString(v.viewport.View())
	}
	b.WriteString("\n\n")

	if v.notice != "" {
		b.WriteString(v.styles.Muted.Render(v.notice))
		b.WriteString("  ")
	}
	if v.section != nil {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("[%3.f%%]", v.viewport.ScrollPercent()*100)))
		b.WriteString("  ")
	}
	b.WriteString(v.help.ShortHelpView(v.keymap.SectionHelp()))

	return b.String()
}

func pageLabel(s *domain.Section) string {
	if s.EndPage > s.Page {
		return fmt.Sprintf("pp.%d-%d", s.Page, s.EndPage)
	}
	return fmt.Sprintf("p.%d", s.Page)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.viewport.Width = max(width-4, 20)
	v.viewport.Height = max(height-reservedLines, 3)
	v.render()
}

// Section returns the section on screen.
func (v *View) Section() *domain.Section {
	return v.section
}

// Request returns the location last opened or paged to.
func (v *View) Request() domain.NavigationRequest {
	return v.request
}

// Back returns the view esc returns to.
func (v *View) Back() messages.ViewType {
	return v.back
}

// Loading reports whether a section is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Notice returns the transient status line.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
