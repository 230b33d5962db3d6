// Package status renders the one-line bar under the analysis view.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// State is what the analysis view is doing.
type State string

const (
	StateReady     State = "ready"
	StateAnalysing State = "analysing"
	StateError     State = "error"
	StateResults   State = "results"
)

// labelOrder is the order label counts are listed in.
var labelOrder = []domain.Label{
	domain.LabelSupporting,
	domain.LabelContradictory,
	domain.LabelRelated,
}

// Bar shows the analysis state on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	help    help.Model
	state   State
	message string
	source  string
	counts  map[domain.Label]int
	total   int
	elapsed time.Duration
	width   int
}

// NewBar creates a status bar. Nil arguments fall back to the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		help:   s.NewHelp(),
		state:  StateReady,
		width:  80,
	}
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateAnalysing:
		if s.source != "" {
			return s.styles.Muted.Render("Analysing against " + s.source + "...")
		}
		return s.styles.Muted.Render("Analysing...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateResults:
		if s.message != "" {
			return s.styles.Normal.Render(s.message)
		}
		return s.renderCounts()
	}
	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

// renderCounts lists per-label snippet counts, each in its badge colour.
func (s *Bar) renderCounts() string {
	if s.total == 0 {
		return s.styles.Muted.Render("No related sections")
	}
	parts := make([]string, 0, len(labelOrder)+1)
	for _, l := range labelOrder {
		if n := s.counts[l]; n > 0 {
			parts = append(parts, s.styles.Label(l).Render(fmt.Sprintf("%d %s", n, l)))
		}
	}
	out := strings.Join(parts, " ")
	if s.elapsed > 0 {
		out += s.styles.Muted.Render(fmt.Sprintf(" in %s", s.elapsed.Round(time.Millisecond)))
	}
	return out
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.state == StateResults && s.total > 0 {
		bindings = s.keymap.ResultsHelp()
	}
	return s.help.ShortHelpView(bindings)
}

// SetState sets the current state.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the current state.
func (s *Bar) State() State { return s.state }

// SetMessage sets a message that replaces the state text.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the current message.
func (s *Bar) Message() string { return s.message }

// SetSource names the document the passage was taken from.
func (s *Bar) SetSource(name string) { s.source = name }

// SetResult records the label breakdown of a finished analysis.
// A nil result clears it.
func (s *Bar) SetResult(r *domain.AnalysisResult) {
	s.counts, s.total, s.elapsed = nil, 0, 0
	if r == nil {
		return
	}
	s.counts = r.CountByLabel()
	s.total = len(r.Snippets)
	s.elapsed = r.ProcessingTime
}

// ResultCount returns the number of snippets in the last result.
func (s *Bar) ResultCount() int { return s.total }

// Count returns the number of snippets carrying the label.
func (s *Bar) Count(l domain.Label) int { return s.counts[l] }

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the bar width.
func (s *Bar) Width() int { return s.width }

// Clear resets the bar to ready.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.source = ""
	s.SetResult(nil)
}
