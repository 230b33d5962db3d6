// Package drivingtest provides configurable fakes of the driving ports for
// adapter tests. Unset funcs return zero values.
package drivingtest

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
)

var (
	_ driving.AnalysisService = (*AnalysisService)(nil)
	_ driving.LibraryService  = (*LibraryService)(nil)
	_ driving.SettingsService = (*SettingsService)(nil)
)

// AnalysisService is a fake driving.AnalysisService.
type AnalysisService struct {
	AnalyzeFunc func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// Analyze calls AnalyzeFunc, or returns an empty result.
func (m *AnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return &domain.AnalysisResult{QueryText: req.Text, SourceDocumentID: req.SourceDocumentID}, nil
}

// LibraryService is a fake driving.LibraryService.
type LibraryService struct {
	IngestFunc            func(ctx context.Context, req driving.IngestRequest) (*domain.Document, error)
	IngestFilesFunc       func(ctx context.Context, paths []string, category domain.Category) ([]driving.IngestResult, error)
	OnDocumentIndexedFunc func(ctx context.Context, id string) (bool, error)
	OnDocumentRemovedFunc func(ctx context.Context, id string) (bool, error)
	ListFunc              func(ctx context.Context, category domain.Category) ([]domain.Document, error)
	GetFunc               func(ctx context.Context, id string) (*domain.Document, error)
	SectionsFunc          func(ctx context.Context, id string) ([]domain.Section, error)
	SetCategoryFunc       func(ctx context.Context, id string, category domain.Category) error
	NavigateFunc          func(ctx context.Context, req domain.NavigationRequest) (*domain.Section, error)
	ClearReadingFunc      func(ctx context.Context) (int, error)
	SyncFunc              func(ctx context.Context) (*driving.SyncReport, error)
	WatchFunc             func(ctx context.Context) error
	SourceDocumentFunc    func(ctx context.Context, id string, allowKnowledgeBase bool) (*domain.Document, error)
	StatsFunc             func() domain.LibraryStats
}

func (m *LibraryService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.Document, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, req)
	}
	return &domain.Document{Name: req.Name, Category: req.Category}, nil
}

func (m *LibraryService) IngestFiles(ctx context.Context, paths []string, category domain.Category) ([]driving.IngestResult, error) {
	if m.IngestFilesFunc != nil {
		return m.IngestFilesFunc(ctx, paths, category)
	}
	return nil, nil
}

func (m *LibraryService) OnDocumentIndexed(ctx context.Context, id string) (bool, error) {
	if m.OnDocumentIndexedFunc != nil {
		return m.OnDocumentIndexedFunc(ctx, id)
	}
	return true, nil
}

func (m *LibraryService) OnDocumentRemoved(ctx context.Context, id string) (bool, error) {
	if m.OnDocumentRemovedFunc != nil {
		return m.OnDocumentRemovedFunc(ctx, id)
	}
	return true, nil
}

func (m *LibraryService) List(ctx context.Context, category domain.Category) ([]domain.Document, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, category)
	}
	return nil, nil
}

func (m *LibraryService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *LibraryService) Sections(ctx context.Context, id string) ([]domain.Section, error) {
	if m.SectionsFunc != nil {
		return m.SectionsFunc(ctx, id)
	}
	return nil, nil
}

func (m *LibraryService) SetCategory(ctx context.Context, id string, category domain.Category) error {
	if m.SetCategoryFunc != nil {
		return m.SetCategoryFunc(ctx, id, category)
	}
	return nil
}

func (m *LibraryService) Navigate(ctx context.Context, req domain.NavigationRequest) (*domain.Section, error) {
	if m.NavigateFunc != nil {
		return m.NavigateFunc(ctx, req)
	}
	return nil, domain.ErrNotFound
}

func (m *LibraryService) ClearReading(ctx context.Context) (int, error) {
	if m.ClearReadingFunc != nil {
		return m.ClearReadingFunc(ctx)
	}
	return 0, nil
}

func (m *LibraryService) Sync(ctx context.Context) (*driving.SyncReport, error) {
	if m.SyncFunc != nil {
		return m.SyncFunc(ctx)
	}
	return &driving.SyncReport{}, nil
}

func (m *LibraryService) Watch(ctx context.Context) error {
	if m.WatchFunc != nil {
		return m.WatchFunc(ctx)
	}
	return nil
}

func (m *LibraryService) SourceDocument(ctx context.Context, id string, allowKnowledgeBase bool) (*domain.Document, error) {
	if m.SourceDocumentFunc != nil {
		return m.SourceDocumentFunc(ctx, id, allowKnowledgeBase)
	}
	if id == "" {
		id = "reading-latest"
	}
	return &domain.Document{ID: id, Name: id, Category: domain.CategoryReading}, nil
}

func (m *LibraryService) Stats() domain.LibraryStats {
	if m.StatsFunc != nil {
		return m.StatsFunc()
	}
	return domain.LibraryStats{}
}

// SettingsService is a fake driving.SettingsService. Settings holds the
// value Get returns; Set and the provider setters record their arguments.
type SettingsService struct {
	Settings *domain.AppSettings
	Err      error

	ValidateErr          error
	ValidateEmbeddingErr error
	ValidateLLMErr       error

	SetCalls     [][2]string
	EmbeddingSet []string // provider, model, key
	LLMSet       []string
	LLMCleared   bool
}

func (m *SettingsService) Get() (*domain.AppSettings, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Settings == nil {
		defaults := domain.DefaultAppSettings()
		m.Settings = &defaults
	}
	return m.Settings, nil
}

func (m *SettingsService) Save(settings *domain.AppSettings) error {
	if m.Err == nil {
		m.Settings = settings
	}
	return m.Err
}

func (m *SettingsService) Set(key, value string) error {
	m.SetCalls = append(m.SetCalls, [2]string{key, value})
	return m.Err
}

func (m *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.EmbeddingSet = []string{string(provider), model, apiKey}
	return m.Err
}

func (m *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.LLMSet = []string{string(provider), model, apiKey}
	return m.Err
}

func (m *SettingsService) ClearLLMProvider() error {
	m.LLMCleared = true
	return m.Err
}

func (m *SettingsService) Validate() error {
	return m.ValidateErr
}

func (m *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

func (m *SettingsService) ValidateEmbeddingConfig() error {
	return m.ValidateEmbeddingErr
}

func (m *SettingsService) ValidateLLMConfig() error {
	return m.ValidateLLMErr
}
