// Package tui is the interactive terminal front end of lens. It reaches the
// core only through the driving ports collected in Ports.
package tui

import (
	"errors"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

var (
	ErrInvalidPorts           = errors.New("tui: invalid ports configuration")
	ErrMissingAnalysisService = errors.New("tui: analysis service is required")
	ErrMissingLibraryService  = errors.New("tui: library service is required")
)

// Ports are the services the views call.
type Ports struct {
	Analysis driving.AnalysisService
	Library  driving.LibraryService
}

func NewPorts(analysis driving.AnalysisService, library driving.LibraryService) *Ports {
	return &Ports{Analysis: analysis, Library: library}
}

// Validate reports every missing service, joined.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	var errs []error
	if p.Analysis == nil {
		errs = append(errs, ErrMissingAnalysisService)
	}
	if p.Library == nil {
		errs = append(errs, ErrMissingLibraryService)
	}
	return errors.Join(errs...)
}
