// Package messages holds the tea.Msg types the lens views exchange.
// Results of background commands carry their error alongside the payload;
// a non-nil Err means the payload is empty.
package messages

import "github.com/custodia-labs/sercha-lens/internal/core/domain"

// ViewType names a screen of the TUI.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewAnalyze
	ViewDocuments
	ViewSection
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:      "menu",
	ViewAnalyze:   "analyze",
	ViewDocuments: "documents",
	ViewSection:   "section",
	ViewHelp:      "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// Navigation.
type (
	// ViewChanged switches the active screen.
	ViewChanged struct{ View ViewType }

	// Quit exits the program.
	Quit struct{}

	// ErrorOccurred surfaces an error in the status bar.
	ErrorOccurred struct{ Err error }
)

// Analysis.
type (
	// SourceSelected sets the library document passages are taken from.
	SourceSelected struct{ Document domain.Document }

	// AnalysisCompleted carries the snippets found for a passage. Source is
	// nil for a typed passage.
	AnalysisCompleted struct {
		Source *domain.Document
		Result *domain.AnalysisResult
		Err    error
	}

	// SectionRequested opens a snippet's section. Closing the section view
	// returns to Back.
	SectionRequested struct {
		Request domain.NavigationRequest
		Name    string
		Back    ViewType
	}

	SectionLoaded struct {
		Section *domain.Section
		Err     error
	}
)

// Library.
type (
	DocumentsLoaded struct {
		Documents []domain.Document
		Err       error
	}

	// DocumentUpdated reports an action on one document. Found is false when
	// the document was already gone.
	DocumentUpdated struct {
		DocumentID string
		Action     string
		Found      bool
		Err        error
	}

	// DocumentsPruned counts the reading documents removed.
	DocumentsPruned struct {
		Removed int
		Err     error
	}
)
