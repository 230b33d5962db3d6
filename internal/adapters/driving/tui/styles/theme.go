// Package styles holds the lens colour palette and lipgloss styles.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// Theme is the palette. Every colour adapts to light and dark terminals.
type Theme struct {
	Accent    lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Bar       lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	// Label colours, one per snippet label.
	Supporting    lipgloss.AdaptiveColor
	Contradictory lipgloss.AdaptiveColor
	Related       lipgloss.AdaptiveColor
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:        lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"},
		Secondary:     lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"},
		Text:          lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Muted:         lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Border:        lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		Bar:           lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"},
		Error:         lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		Supporting:    lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"},
		Contradictory: lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"},
		Related:       lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
	}
}

// Styles are the lipgloss styles the views render with.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Passage frames the text under analysis.
	Passage lipgloss.Style

	Supporting    lipgloss.Style
	Contradictory lipgloss.Style
	Related       lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	frame := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme:      theme,
		Title:      lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle:   lipgloss.NewStyle().Foreground(theme.Secondary),
		Normal:     lipgloss.NewStyle().Foreground(theme.Text),
		Muted:      lipgloss.NewStyle().Foreground(theme.Muted),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Error:      lipgloss.NewStyle().Foreground(theme.Error),
		Success:    lipgloss.NewStyle().Foreground(theme.Supporting),
		InputField: frame.Padding(0, 1),
		StatusBar:  lipgloss.NewStyle().Foreground(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Help:       lipgloss.NewStyle().Foreground(theme.Muted).Italic(true),
		Border:     frame,
		Passage: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).BorderTop(false).BorderRight(false).BorderBottom(false).
			BorderForeground(theme.Accent).
			PaddingLeft(1).
			Foreground(theme.Text),
		Supporting:    lipgloss.NewStyle().Bold(true).Foreground(theme.Supporting),
		Contradictory: lipgloss.NewStyle().Bold(true).Foreground(theme.Contradictory),
		Related:       lipgloss.NewStyle().Foreground(theme.Related),
	}
}

// DefaultStyles returns styles for DefaultTheme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind the styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Label returns the style for a snippet label. Unknown labels render as related.
func (s *Styles) Label(l domain.Label) lipgloss.Style {
	switch l {
	case domain.LabelSupporting:
		return s.Supporting
	case domain.LabelContradictory:
		return s.Contradictory
	default:
		return s.Related
	}
}

// Badge renders a label as "[label]" in its colour.
func (s *Styles) Badge(l domain.Label) string {
	if l == "" {
		l = domain.LabelRelated
	}
	return s.Label(l).Render("[" + string(l) + "]")
}

// ScoreBar renders a presentation score in [0, 1] as a meter of width cells
// followed by the score.
func (s *Styles) ScoreBar(score float64, width int) string {
	if width < 1 {
		width = 1
	}
	score = min(max(score, 0), 1)
	filled := int(score*float64(width) + 0.5)
	bar := s.Selected.Render(strings.Repeat("█", filled)) +
		s.Muted.Render(strings.Repeat("░", width-filled))
	return bar + s.Muted.Render(fmt.Sprintf(" %.2f", score))
}

// NewHelp returns a key hint renderer in the theme colours.
func (s *Styles) NewHelp() help.Model {
	h := help.New()
	key := lipgloss.NewStyle().Foreground(s.theme.Secondary)
	desc := lipgloss.NewStyle().Foreground(s.theme.Muted)
	sep := lipgloss.NewStyle().Foreground(s.theme.Border)
	h.Styles.ShortKey, h.Styles.FullKey = key, key
	h.Styles.ShortDesc, h.Styles.FullDesc = desc, desc
	h.Styles.ShortSeparator, h.Styles.FullSeparator = sep, sep
	h.ShortSeparator = " | "
	return h
}
