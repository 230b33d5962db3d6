package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result  *domain.AnalysisResult
	err     error
	lastReq domain.AnalysisRequest
}

func (m *mockAnalysisService) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	m.lastReq = req
	return m.result, m.err
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	documents []domain.Document
	document  *domain.Document
	sections  []domain.Section
	section   *domain.Section
	err       error
	stats     domain.LibraryStats

	sourceErr   error
	lastNav     domain.NavigationRequest
	lastSource  string
	lastAllowKB bool
}

func (m *mockLibraryService) Ingest(_ context.Context, _ driving.IngestRequest) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockLibraryService) IngestFiles(_ context.Context, _ []string, _ domain.Category) ([]driving.IngestResult, error) {
	return nil, m.err
}

func (m *mockLibraryService) OnDocumentIndexed(_ context.Context, _ string) (bool, error) {
	return m.err == nil, m.err
}

func (m *mockLibraryService) OnDocumentRemoved(_ context.Context, _ string) (bool, error) {
	return m.err == nil, m.err
}

func (m *mockLibraryService) List(_ context.Context, _ domain.Category) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockLibraryService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockLibraryService) Sections(_ context.Context, _ string) ([]domain.Section, error) {
	return m.sections, m.err
}

func (m *mockLibraryService) SetCategory(_ context.Context, _ string, _ domain.Category) error {
	return m.err
}

func (m *mockLibraryService) Navigate(_ context.Context, req domain.NavigationRequest) (*domain.Section, error) {
	m.lastNav = req
	return m.section, m.err
}

func (m *mockLibraryService) ClearReading(_ context.Context) (int, error) {
	return 0, m.err
}

func (m *mockLibraryService) Sync(_ context.Context) (*driving.SyncReport, error) {
	return &driving.SyncReport{}, m.err
}

func (m *mockLibraryService) Watch(_ context.Context) error {
	return m.err
}

func (m *mockLibraryService) SourceDocument(_ context.Context, id string, allowKB bool) (*domain.Document, error) {
	m.lastSource = id
	m.lastAllowKB = allowKB
	if m.sourceErr != nil {
		return nil, m.sourceErr
	}
	if m.document != nil {
		return m.document, nil
	}
	return &domain.Document{ID: id}, nil
}

func (m *mockLibraryService) Stats() domain.LibraryStats {
	return m.stats
}

func newTestServer(analysis *mockAnalysisService, library *mockLibraryService) (*Server, error) {
	return NewServer(&Ports{Analysis: analysis, Library: library})
}
