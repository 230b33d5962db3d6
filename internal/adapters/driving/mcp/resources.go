package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

const (
	uriScheme    = "lens://"
	documentsURI = uriScheme + "documents"
	statsURI     = uriScheme + "stats"
	jsonMIME     = "application/json"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "Every document in the library with its category and index state",
		MIMEType:    jsonMIME,
	}, s.handleDocumentsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "stats",
		Description: "Document and section counts and the index vector size",
		MIMEType:    jsonMIME,
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}/sections",
		Name:        "document-sections",
		Description: "Sections extracted from one library document, in reading order",
		MIMEType:    jsonMIME,
	}, s.handleSectionsResource)
}

type documentInfo struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Title    string          `json:"title,omitempty"`
	Category domain.Category `json:"category"`
	Pages    int             `json:"pages"`
	Sections int             `json:"sections"`
	Indexed  bool            `json:"indexed"`
	MIMEType string          `json:"mime_type"`
	Uploaded string          `json:"uploaded_at"`
}

func newDocumentInfo(d *domain.Document) documentInfo {
	return documentInfo{
		ID:       d.ID,
		Name:     d.DisplayName(),
		Title:    d.Title,
		Category: d.Category,
		Pages:    d.PageCount,
		Sections: d.SectionCount,
		Indexed:  d.IsIndexed(),
		MIMEType: d.MIMEType,
		Uploaded: d.UploadedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Library.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	infos := make([]documentInfo, len(docs))
	for i := range docs {
		infos[i] = newDocumentInfo(&docs[i])
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleStatsResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Library.Stats())
}

// handleSectionsResource serves lens://documents/{documentId}/sections. An
// unknown document is reported as a missing resource.
func (s *Server) handleSectionsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	docID, ok := sectionsDocumentID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sections, err := s.ports.Library.Sections(ctx, docID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	case err != nil:
		return nil, fmt.Errorf("listing sections: %w", err)
	}

	out := make([]SectionOutput, len(sections))
	for i := range sections {
		out[i] = sectionOutput(&sections[i])
	}
	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: jsonMIME, Text: string(data)}},
	}, nil
}

// sectionsDocumentID pulls the single path segment out of
// lens://documents/{id}/sections.
func sectionsDocumentID(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, documentsURI+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/sections")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
