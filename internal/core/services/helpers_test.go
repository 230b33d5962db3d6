package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/embedding/local"
	index "github.com/custodia-labs/sercha-lens/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-lens/internal/classifier/heuristic"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-lens/internal/normalisers"
	"github.com/custodia-labs/sercha-lens/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-lens/internal/normalisers/plaintext"
	"github.com/custodia-labs/sercha-lens/internal/postprocessors"
	"github.com/custodia-labs/sercha-lens/internal/postprocessors/sectioner"
	"github.com/custodia-labs/sercha-lens/internal/postprocessors/wordband"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService. It wraps the hashing
// embedder so vectors stay meaningful, and can be made to fail or stall.
type mockEmbedder struct {
	mu     sync.Mutex
	inner  *local.EmbeddingService
	err    error
	delay  time.Duration
	dims   int
	calls  int
	batchN int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{inner: local.NewEmbeddingService(0)}
}

func (m *mockEmbedder) wait(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	delay, err := m.delay, m.err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *mockEmbedder) resize(v []float32) []float32 {
	if m.dims == 0 || m.dims == len(v) {
		return v
	}
	out := make([]float32, m.dims)
	copy(out, v)
	return out
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	v, err := m.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return m.resize(v), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.batchN++
	m.mu.Unlock()

	out, err := m.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = m.resize(out[i])
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return m.inner.Dimensions()
}
func (m *mockEmbedder) ModelName() string            { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error                 { return nil }

func (m *mockEmbedder) fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// mockSummariser implements driven.Summariser.
type mockSummariser struct {
	summary string
	err     error
	delay   time.Duration
	calls   int
}

func (m *mockSummariser) Summarise(ctx context.Context, _ string, _ []domain.Snippet) (string, error) {
	m.calls++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.summary, m.err
}

// mockWatcher implements driven.LibraryWatcher over a channel the test feeds.
type mockWatcher struct {
	changes chan domain.RawDocumentChange
	err     error
}

func (m *mockWatcher) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.changes, nil
}

func (m *mockWatcher) Close() error { return nil }

var errOracle = errors.New("oracle offline")

// --- Test stack ---

// testStack wires the library the way the binary does, in memory.
type testStack struct {
	docs     *memory.DocumentStore
	content  *memory.ContentStore
	index    *index.Index
	embedder *mockEmbedder
	store    *EmbeddingStore
	library  *LibraryService
	analysis *AnalysisService
}

func testExtractor() *SectionExtractor {
	registry := normalisers.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(markdown.New())
	pipeline := postprocessors.NewPipeline(
		sectioner.New(),
		wordband.New(wordband.WithMinWords(3)),
	)
	return NewSectionExtractor(registry, pipeline)
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	st := &testStack{
		docs:     memory.NewDocumentStore(),
		content:  memory.NewContentStore(),
		index:    index.New(),
		embedder: newMockEmbedder(),
	}
	st.store = NewEmbeddingStore(st.embedder, st.index, st.docs)
	st.library = NewLibraryService(st.docs, st.content, testExtractor(), st.store,
		domain.LibrarySettings{DefaultCategory: domain.CategoryKnowledgeBase})

	var clock int64
	st.library.now = func() time.Time {
		clock++
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(clock) * time.Second)
	}

	st.analysis = NewAnalysisService(st.store, heuristic.New(), nil, domain.DefaultAnalysisSettings())
	return st
}

func (st *testStack) ingest(t *testing.T, name, body string, category domain.Category) *domain.Document {
	t.Helper()
	doc, err := st.library.Ingest(context.Background(), driving.IngestRequest{
		Name:     name,
		Content:  []byte(body),
		Category: category,
	})
	require.NoError(t, err)
	return doc
}

// Ensure mocks implement their interfaces.
var (
	_ driven.EmbeddingService = (*mockEmbedder)(nil)
	_ driven.Summariser       = (*mockSummariser)(nil)
	_ driven.LibraryWatcher   = (*mockWatcher)(nil)
)

// blockProcessor turns every normalised block into its own section.
type blockProcessor struct{}

func (blockProcessor) Name() string { return "blocks" }

func (blockProcessor) Process(_ context.Context, doc *driven.NormaliseResult, _ []domain.Section) ([]domain.Section, error) {
	out := make([]domain.Section, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		out = append(out, domain.Section{Body: b.Text, Page: b.Page, EndPage: b.Page})
	}
	return out, nil
}

func postprocessorsOnePerBlock() driven.SectionPipeline {
	return postprocessors.NewPipeline(blockProcessor{})
}
