package mcp

import (
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Analysis runs passage analyses.
	Analysis driving.AnalysisService

	// Library resolves documents, sections and pages.
	Library driving.LibraryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	return nil
}
