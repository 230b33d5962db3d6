package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// AnalyzeInput is the input schema for the analyze tool.
type AnalyzeInput struct {
	Text             string `json:"text" jsonschema:"the selected passage to analyse"`
	SourceDocumentID string `json:"source_document_id,omitempty" jsonschema:"document the passage comes from (default: latest reading document)"`
	MaxResults       int    `json:"max_results,omitempty" jsonschema:"maximum number of snippets to return"`
}

// AnalyzeOutput is the output schema for the analyze tool.
type AnalyzeOutput struct {
	QueryText        string           `json:"query_text"`
	SourceDocumentID string           `json:"source_document_id"`
	Snippets         []domain.Snippet `json:"snippets"`
	Summary          string           `json:"summary,omitempty"`
	ProcessingMillis int64            `json:"processing_ms"`
}

// NavigateInput is the input schema for the navigate tool.
type NavigateInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to navigate"`
	Page       int    `json:"page,omitempty" jsonschema:"1-based page number"`
	SectionID  string `json:"section_id,omitempty" jsonschema:"section to open directly"`
	Text       string `json:"text,omitempty" jsonschema:"text the section on that page should contain"`
}

// SectionOutput describes one section.
type SectionOutput struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Page       int    `json:"page"`
	EndPage    int    `json:"end_page"`
	WordCount  int    `json:"word_count"`
	Body       string `json:"body,omitempty"`
}

// ListSectionsInput is the input schema for the list_sections tool.
type ListSectionsInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document whose sections to list"`
}

// ListSectionsOutput is the output schema for the list_sections tool.
type ListSectionsOutput struct {
	Sections []SectionOutput `json:"sections"`
	Count    int             `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze",
		Description: "Find sections of other library documents related to a passage, " +
			"labelled supporting, contradictory or related",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "navigate",
		Description: "Open the section of a document at a page, or by section ID",
	}, s.handleNavigate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sections",
		Description: "List the sections of a library document",
	}, s.handleListSections)
}

// handleAnalyze handles the analyze tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	source, err := s.ports.Library.SourceDocument(ctx, input.SourceDocumentID, true)
	if err != nil {
		return nil, AnalyzeOutput{}, toolError(fmt.Errorf("source document: %w", err))
	}

	result, err := s.ports.Analysis.Analyze(ctx, domain.AnalysisRequest{
		Text:             input.Text,
		SourceDocumentID: source.ID,
		MaxResults:       input.MaxResults,
	})
	if err != nil {
		return nil, AnalyzeOutput{}, toolError(err)
	}

	return nil, AnalyzeOutput{
		QueryText:        result.QueryText,
		SourceDocumentID: result.SourceDocumentID,
		Snippets:         result.Snippets,
		Summary:          result.Summary,
		ProcessingMillis: result.ProcessingTime.Milliseconds(),
	}, nil
}

// handleNavigate handles the navigate tool invocation.
func (s *Server) handleNavigate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NavigateInput,
) (*mcp.CallToolResult, SectionOutput, error) {
	section, err := s.ports.Library.Navigate(ctx, domain.NavigationRequest{
		DocumentID: input.DocumentID,
		Page:       input.Page,
		SectionID:  input.SectionID,
		Text:       input.Text,
	})
	if err != nil {
		return nil, SectionOutput{}, toolError(err)
	}

	out := sectionOutput(section)
	out.Body = section.Body
	return nil, out, nil
}

// handleListSections handles the list_sections tool invocation.
func (s *Server) handleListSections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListSectionsInput,
) (*mcp.CallToolResult, ListSectionsOutput, error) {
	sections, err := s.ports.Library.Sections(ctx, input.DocumentID)
	if err != nil {
		return nil, ListSectionsOutput{}, toolError(err)
	}

	output := ListSectionsOutput{
		Sections: make([]SectionOutput, len(sections)),
		Count:    len(sections),
	}
	for i := range sections {
		output.Sections[i] = sectionOutput(&sections[i])
	}
	return nil, output, nil
}

func sectionOutput(s *domain.Section) SectionOutput {
	return SectionOutput{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Title:      s.DisplayTitle(),
		Page:       s.Page,
		EndPage:    s.EndPage,
		WordCount:  s.WordCount,
	}
}
