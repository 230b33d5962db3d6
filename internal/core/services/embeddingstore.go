package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

// DefaultEmbedBatchSize is the number of sections sent per EmbedBatch call.
const DefaultEmbedBatchSize = 32

// EmbeddingStore computes and persists one embedding per section and keeps
// the section index in step with the document store.
//
// A document's sections become queryable all at once: vectors are computed
// and validated before anything is written, so a failing oracle leaves the
// previous entries untouched.
type EmbeddingStore struct {
	embedder  driven.EmbeddingService
	index     driven.SectionIndex
	docStore  driven.DocumentStore
	batchSize int
}

// LoadReport summarises an index rebuild.
type LoadReport struct {
	Documents int
	Sections  int

	// Stale lists documents whose stored vectors do not match the current
	// embedding model and need re-indexing.
	Stale []string
}

// NewEmbeddingStore creates a new embedding store.
// The embedder may be nil, in which case Add and QueryText fail with
// domain.ErrEmbeddingUnavailable.
func NewEmbeddingStore(
	embedder driven.EmbeddingService,
	index driven.SectionIndex,
	docStore driven.DocumentStore,
) *EmbeddingStore {
	return &EmbeddingStore{
		embedder:  embedder,
		index:     index,
		docStore:  docStore,
		batchSize: DefaultEmbedBatchSize,
	}
}

// SetBatchSize overrides the embedding batch size.
func (s *EmbeddingStore) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Add embeds the document's sections and replaces its index entries.
// Calling Add twice for the same document replaces rather than duplicates.
func (s *EmbeddingStore) Add(ctx context.Context, doc *domain.Document, sections []domain.Section) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document is required", domain.ErrInvalidInput)
	}
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	defer logger.Timer("embed " + doc.DisplayName())()

	vectors, err := s.embedSections(ctx, sections)
	if err != nil {
		return err
	}

	dims, err := s.checkDimensions(doc.ID, vectors)
	if err != nil {
		return err
	}

	indexed := make([]domain.IndexedSection, len(sections))
	for i := range sections {
		indexed[i] = domain.IndexedSection{Section: sections[i], Vector: vectors[i]}
	}

	if err := s.docStore.ReplaceSections(ctx, doc.ID, indexed); err != nil {
		return fmt.Errorf("persist sections: %w", err)
	}

	entry := driven.IndexDocument{ID: doc.ID, Name: doc.DisplayName(), UploadedAt: doc.UploadedAt}
	if err := s.index.Replace(ctx, entry, indexed); err != nil {
		return fmt.Errorf("index sections: %w", err)
	}

	logger.Debug("Indexed %d sections of %s (%d dims)", len(indexed), doc.ID, dims)
	return nil
}

// embedSections embeds every section in batches.
func (s *EmbeddingStore) embedSections(ctx context.Context, sections []domain.Section) ([][]float32, error) {
	vectors := make([][]float32, 0, len(sections))
	for start := 0; start < len(sections); start += s.batchSize {
		end := min(start+s.batchSize, len(sections))

		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, embedText(&sections[i]))
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d sections",
				domain.ErrEmbeddingUnavailable, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// checkDimensions verifies all vectors share one length that matches the
// rest of the index.
func (s *EmbeddingStore) checkDimensions(documentID string, vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dims := len(vectors[0])
	if dims == 0 {
		return 0, fmt.Errorf("%w: empty vector", domain.ErrEmbeddingUnavailable)
	}
	for i, v := range vectors {
		if len(v) != dims {
			return 0, fmt.Errorf("%w: vector %d has %d dims, want %d", domain.ErrDimensionMismatch, i, len(v), dims)
		}
	}

	stats := s.index.Stats()
	onlySelf := stats.Documents == 1 && s.index.Contains(documentID)
	if stats.Dimensions > 0 && stats.Dimensions != dims && !onlySelf {
		return 0, fmt.Errorf("%w: index has %d dims, model produced %d", domain.ErrDimensionMismatch, stats.Dimensions, dims)
	}
	return dims, nil
}

// Remove drops a document's sections and embeddings.
// Unknown documents are a no-op.
func (s *EmbeddingStore) Remove(ctx context.Context, documentID string) error {
	if s.index != nil {
		if err := s.index.Remove(ctx, documentID); err != nil {
			return fmt.Errorf("remove from index: %w", err)
		}
	}
	if err := s.docStore.DeleteSections(ctx, documentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete sections: %w", err)
	}
	return nil
}

// Embed computes the query vector for a text.
func (s *EmbeddingStore) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return vector, nil
}

// Query returns up to limit nearest sections, skipping excludeDocumentID.
// An empty index yields an empty result.
func (s *EmbeddingStore) Query(ctx context.Context, vector []float32, excludeDocumentID string, limit int) ([]domain.Candidate, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if limit <= 0 {
		return []domain.Candidate{}, nil
	}
	candidates, err := s.index.Search(ctx, vector, excludeDocumentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return candidates, nil
}

// QueryText embeds text and queries the index with it.
func (s *EmbeddingStore) QueryText(ctx context.Context, text, excludeDocumentID string, limit int) ([]domain.Candidate, error) {
	vector, err := s.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, vector, excludeDocumentID, limit)
}

// Contains reports whether the document is queryable.
func (s *EmbeddingStore) Contains(documentID string) bool {
	return s.index != nil && s.index.Contains(documentID)
}

// Load rebuilds the index from the document store.
// Documents embedded with a different vector size are skipped and reported
// as stale.
func (s *EmbeddingStore) Load(ctx context.Context) (*LoadReport, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	defer logger.Timer("load index")()

	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	stored, err := s.docStore.LoadIndexed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}

	byDoc := make(map[string][]domain.IndexedSection)
	for _, sec := range stored {
		byDoc[sec.Section.DocumentID] = append(byDoc[sec.Section.DocumentID], sec)
	}

	want := 0
	if s.embedder != nil {
		want = s.embedder.Dimensions()
	}

	report := &LoadReport{}
	for i := range docs {
		doc := &docs[i]
		sections := byDoc[doc.ID]
		if len(sections) == 0 {
			continue
		}
		if want > 0 && len(sections[0].Vector) != want {
			report.Stale = append(report.Stale, doc.ID)
			continue
		}

		entry := driven.IndexDocument{ID: doc.ID, Name: doc.DisplayName(), UploadedAt: doc.UploadedAt}
		if err := s.index.Replace(ctx, entry, sections); err != nil {
			logger.Warn("Skipping %s during index load: %v", doc.ID, err)
			report.Stale = append(report.Stale, doc.ID)
			continue
		}
		report.Documents++
		report.Sections += len(sections)
	}
	sort.Strings(report.Stale)

	if len(report.Stale) > 0 {
		logger.Warn("%d documents were embedded with a different model and need re-indexing", len(report.Stale))
	}
	logger.Info("Loaded %d sections from %d documents", report.Sections, report.Documents)
	return report, nil
}

// Stats reports the size of the index.
func (s *EmbeddingStore) Stats() domain.LibraryStats {
	if s.index == nil {
		return domain.LibraryStats{}
	}
	return s.index.Stats()
}

// Close tears down the index.
func (s *EmbeddingStore) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}

// embedText is the text embedded for a section: its heading then its body.
func embedText(sec *domain.Section) string {
	if sec.Title == "" {
		return sec.Body
	}
	return sec.Title + "\n\n" + sec.Body
}
