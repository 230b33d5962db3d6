package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	index "github.com/custodia-labs/sercha-lens/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/sercha-lens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

func storeFixture(t *testing.T) (*EmbeddingStore, *memory.DocumentStore, *mockEmbedder) {
	t.Helper()
	docs := memory.NewDocumentStore()
	embedder := newMockEmbedder()
	return NewEmbeddingStore(embedder, index.New(), docs), docs, embedder
}

func savedDoc(t *testing.T, docs *memory.DocumentStore, id string) *domain.Document {
	t.Helper()
	doc := &domain.Document{ID: id, Name: id + ".txt", UploadedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, docs.SaveDocument(context.Background(), doc))
	return doc
}

func bodies(docID string, texts ...string) []domain.Section {
	out := make([]domain.Section, len(texts))
	for i, text := range texts {
		out[i] = domain.Section{ID: SectionID(docID, i), DocumentID: docID, Body: text, Order: i, Page: 1, EndPage: 1}
	}
	return out
}

func TestEmbeddingStore_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	store, docs, _ := storeFixture(t)
	doc := savedDoc(t, docs, "a")

	require.NoError(t, store.Add(ctx, doc, bodies("a", "wind turbines generate electricity", "bread baking at home")))
	assert.True(t, store.Contains("a"))
	assert.Equal(t, domain.LibraryStats{Documents: 1, Sections: 2, Dimensions: 512}, store.Stats())

	got, err := store.QueryText(ctx, "wind electricity", "", 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, SectionID("a", 0), got[0].Section.ID)
	assert.Equal(t, "a.txt", got[0].DocumentName)

	stored, err := docs.GetSections(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestEmbeddingStore_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, docs, _ := storeFixture(t)
	doc := savedDoc(t, docs, "a")
	sections := bodies("a", "solar power", "tidal power")

	require.NoError(t, store.Add(ctx, doc, sections))
	require.NoError(t, store.Add(ctx, doc, sections))

	assert.Equal(t, 2, store.Stats().Sections)
	indexed, err := docs.LoadIndexed(ctx)
	require.NoError(t, err)
	assert.Len(t, indexed, 2)
}

func TestEmbeddingStore_Batches(t *testing.T) {
	store, docs, embedder := storeFixture(t)
	store.SetBatchSize(2)
	store.SetBatchSize(0) // ignored
	doc := savedDoc(t, docs, "a")

	texts := make([]string, 5)
	for i := range texts {
		texts[i] = fmt.Sprintf("section number %d about rivers", i)
	}
	require.NoError(t, store.Add(context.Background(), doc, bodies("a", texts...)))
	assert.Equal(t, 3, embedder.batchN)
	assert.Equal(t, 5, store.Stats().Sections)
}

func TestEmbeddingStore_OracleFailureLeavesPreviousState(t *testing.T) {
	ctx := context.Background()
	store, docs, embedder := storeFixture(t)
	doc := savedDoc(t, docs, "a")
	require.NoError(t, store.Add(ctx, doc, bodies("a", "original text")))

	embedder.fail(errOracle)
	err := store.Add(ctx, doc, bodies("a", "new text", "more new text"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
	assert.True(t, errors.Is(err, errOracle))

	stored, err := docs.GetSections(ctx, "a")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "original text", stored[0].Body)
	assert.Equal(t, 1, store.Stats().Sections)
}

func TestEmbeddingStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store, docs, embedder := storeFixture(t)
	a := savedDoc(t, docs, "a")
	b := savedDoc(t, docs, "b")
	require.NoError(t, store.Add(ctx, a, bodies("a", "first model")))

	embedder.dims = 16
	err := store.Add(ctx, b, bodies("b", "second model"))
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
	assert.False(t, store.Contains("b"))

	// The only indexed document may move to the new model.
	require.NoError(t, store.Remove(ctx, "b"))
	require.NoError(t, store.Remove(ctx, "a"))
	require.NoError(t, store.Add(ctx, a, bodies("a", "first model again")))
	assert.Equal(t, 16, store.Stats().Dimensions)
}

func TestEmbeddingStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	doc := savedDoc(t, docs, "a")

	noEmbedder := NewEmbeddingStore(nil, index.New(), docs)
	assert.True(t, errors.Is(noEmbedder.Add(ctx, doc, bodies("a", "x")), domain.ErrEmbeddingUnavailable))
	_, err := noEmbedder.QueryText(ctx, "x", "", 5)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))

	noIndex := NewEmbeddingStore(newMockEmbedder(), nil, docs)
	assert.True(t, errors.Is(noIndex.Add(ctx, doc, bodies("a", "x")), domain.ErrVectorIndexUnavailable))
	_, err = noIndex.Query(ctx, []float32{1}, "", 5)
	assert.True(t, errors.Is(err, domain.ErrVectorIndexUnavailable))
	assert.False(t, noIndex.Contains("a"))
	assert.Equal(t, domain.LibraryStats{}, noIndex.Stats())
	assert.NoError(t, noIndex.Close())

	store, _, _ := storeFixture(t)
	assert.True(t, errors.Is(store.Add(ctx, nil, nil), domain.ErrInvalidInput))
}

func TestEmbeddingStore_RemoveUnknownIsNoop(t *testing.T) {
	store, _, _ := storeFixture(t)
	assert.NoError(t, store.Remove(context.Background(), "missing"))
}

func TestEmbeddingStore_QueryEdgeCases(t *testing.T) {
	ctx := context.Background()
	store, docs, _ := storeFixture(t)

	got, err := store.QueryText(ctx, "anything", "", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	doc := savedDoc(t, docs, "a")
	require.NoError(t, store.Add(ctx, doc, bodies("a", "anything at all")))

	got, err = store.QueryText(ctx, "anything", "", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.QueryText(ctx, "anything", "a", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddingStore_Load(t *testing.T) {
	ctx := context.Background()
	store, docs, embedder := storeFixture(t)
	a := savedDoc(t, docs, "a")
	b := savedDoc(t, docs, "b")
	require.NoError(t, store.Add(ctx, a, bodies("a", "lakes and rivers", "mountain streams")))
	require.NoError(t, store.Add(ctx, b, bodies("b", "ocean currents")))

	fresh := NewEmbeddingStore(embedder, index.New(), docs)
	report, err := fresh.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 3, report.Sections)
	assert.Empty(t, report.Stale)
	assert.Equal(t, store.Stats(), fresh.Stats())

	// A different model marks every stored document stale.
	embedder.dims = 8
	other := NewEmbeddingStore(embedder, index.New(), docs)
	report, err = other.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Documents)
	assert.Equal(t, []string{"a", "b"}, report.Stale)
}

func TestEmbedText(t *testing.T) {
	assert.Equal(t, "body", embedText(&domain.Section{Body: "body"}))
	assert.Equal(t, "Title\n\nbody", embedText(&domain.Section{Title: "Title", Body: "body"}))
}
