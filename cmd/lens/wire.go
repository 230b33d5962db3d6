package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/config/file"
	memoryindex "github.com/custodia-labs/sercha-lens/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/storage/sqlite"
	llmsummariser "github.com/custodia-labs/sercha-lens/internal/adapters/driven/summariser/llm"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-lens/internal/classifier/heuristic"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/core/services"
	"github.com/custodia-labs/sercha-lens/internal/logger"
	"github.com/custodia-labs/sercha-lens/internal/normalisers"
	"github.com/custodia-labs/sercha-lens/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-lens/internal/normalisers/pdf"
	"github.com/custodia-labs/sercha-lens/internal/normalisers/plaintext"
	"github.com/custodia-labs/sercha-lens/internal/postprocessors"
)

// closers releases resources in reverse order of acquisition.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// build wires the adapters into the core services.
//
//nolint:gocyclo // linear wiring
func build(ctx context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = file.DefaultDir(); err != nil {
			return nil, nil, fmt.Errorf("resolve config dir: %w", err)
		}
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, nil, fmt.Errorf("open prompts: %w", err)
	}

	var cl closers
	fail := func(err error) (*cli.Services, func() error, error) {
		_ = cl.close()
		return nil, nil, err
	}

	aiServices := ai.Initialise(settings, prompts)
	cl.add(func() error { aiServices.Close(); return nil })
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}
	if aiServices.FellBack {
		logger.Warn("embedding provider %s unavailable, using the local embedder", settings.Embedding.Provider)
	}

	db, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return fail(fmt.Errorf("open database: %w", err))
	}
	cl.add(db.Close)
	logger.Debug("database: %s", db.Path())

	index := memoryindex.New()
	embeddings := services.NewEmbeddingStore(aiServices.EmbeddingService, index, db.DocumentStore())
	cl.add(embeddings.Close)

	classifier, err := heuristic.NewFromSettings(settings.Analysis, settings.Classifier)
	if err != nil {
		return fail(fmt.Errorf("build classifier: %w", err))
	}

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	pipeline, err := postprocessors.BuildPipeline(processors, settingsService.GetPipelineConfig())
	if err != nil {
		return fail(fmt.Errorf("build pipeline: %w", err))
	}

	registry := normalisers.NewRegistry()
	registry.Register(pdf.New(pdf.WithHeadingRatio(settings.Extraction.HeadingRatio)))
	registry.Register(markdown.New())
	registry.Register(plaintext.New())

	libraryPath := settings.Library.Path
	if libraryPath == "" {
		libraryPath = filepath.Join(dir, "library")
	}
	content, err := filesystem.NewStore(libraryPath)
	if err != nil {
		return fail(fmt.Errorf("open library: %w", err))
	}

	library := services.NewLibraryService(
		db.DocumentStore(),
		content,
		services.NewSectionExtractor(registry, pipeline),
		embeddings,
		settings.Library,
	)
	watcher := filesystem.NewWatcher(content.Root())
	cl.add(watcher.Close)
	library.SetWatcher(watcher)

	report, err := embeddings.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("load index: %w", err))
	}
	logger.Debug("index loaded: %d documents, %d sections", report.Documents, report.Sections)
	for _, id := range report.Stale {
		if _, err := library.OnDocumentIndexed(ctx, id); err != nil {
			logger.Warn("reindex %s: %v", id, err)
		}
	}

	var summariser driven.Summariser
	if aiServices.LLMService != nil {
		summariser = llmsummariser.New(aiServices.LLMService, prompts)
	}
	analysis := services.NewAnalysisService(embeddings, classifier, summariser, settings.Analysis)

	return &cli.Services{
		Library:  library,
		Analysis: analysis,
		Settings: settingsService,
	}, cl.close, nil
}
