package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService tracks which documents are extracted and embedded, and
// keeps the embedding store in step with uploads and deletions.
//
// Mutations are serialised by a single lock. Queries against the
// embedding store never take it.
type LibraryService struct {
	docStore   driven.DocumentStore
	content    driven.ContentStore
	extractor  *SectionExtractor
	embeddings *EmbeddingStore
	watcher    driven.LibraryWatcher
	settings   domain.LibrarySettings

	mu  sync.Mutex
	now func() time.Time
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	docStore driven.DocumentStore,
	content driven.ContentStore,
	extractor *SectionExtractor,
	embeddings *EmbeddingStore,
	settings domain.LibrarySettings,
) *LibraryService {
	if !settings.DefaultCategory.IsValid() {
		settings.DefaultCategory = domain.CategoryKnowledgeBase
	}
	return &LibraryService{
		docStore:   docStore,
		content:    content,
		extractor:  extractor,
		embeddings: embeddings,
		settings:   settings,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetWatcher sets the watcher used by Watch.
func (s *LibraryService) SetWatcher(w driven.LibraryWatcher) {
	s.watcher = w
}

// Ingest stores an uploaded document and indexes it.
//
// Re-uploading a name with identical content only updates its category.
// Changed content is re-indexed under the same document ID. A document
// that fails extraction is not kept.
func (s *LibraryService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.Document, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	category, err := s.category(req.Category)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ingest")
	logger.Debug("Ingesting %s (%d bytes) as %s", name, len(req.Content), category)

	existing, err := s.docStore.GetDocumentByName(ctx, name)
	switch {
	case err == nil:
		return s.reingest(ctx, existing, req.Content, category)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup %s: %w", name, err)
	}

	uri, err := s.content.Put(ctx, name, req.Content)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Name:       name,
		URI:        uri,
		MIMEType:   domain.DetectMIMEType(name),
		Category:   category,
		UploadedAt: s.now(),
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		_ = s.content.Delete(ctx, uri)
		return nil, fmt.Errorf("save document: %w", err)
	}

	if _, err := s.index(ctx, doc); err != nil {
		s.discard(ctx, doc)
		return nil, err
	}
	return s.docStore.GetDocument(ctx, doc.ID)
}

// reingest handles an upload whose name is already in the library.
func (s *LibraryService) reingest(ctx context.Context, doc *domain.Document, content []byte, category domain.Category) (*domain.Document, error) {
	if doc.ContentHash == hashContent(content) && doc.IsIndexed() && s.embeddings.Contains(doc.ID) {
		if doc.Category != category {
			doc.Category = category
			if err := s.docStore.SaveDocument(ctx, doc); err != nil {
				return nil, fmt.Errorf("save document: %w", err)
			}
		}
		logger.Debug("%s unchanged, keeping existing index entries", doc.Name)
		return doc, nil
	}

	previous, prevErr := s.content.Get(ctx, doc.URI)

	uri, err := s.content.Put(ctx, doc.Name, content)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	// The record is written by index only once the new content is indexed,
	// so a failure leaves the stored document as it was.
	updated := *doc
	updated.URI = uri
	updated.Category = category
	updated.MIMEType = domain.DetectMIMEType(doc.Name)
	if _, err := s.index(ctx, &updated); err != nil {
		if prevErr == nil {
			if _, restoreErr := s.content.Put(ctx, doc.Name, previous.Content); restoreErr != nil {
				logger.Warn("Could not restore previous content of %s: %v", doc.Name, restoreErr)
			}
		}
		return nil, err
	}
	return s.docStore.GetDocument(ctx, doc.ID)
}

// IngestFiles ingests files one by one. A failing file does not stop the
// others; the returned error joins every per-file failure.
func (s *LibraryService) IngestFiles(ctx context.Context, paths []string, category domain.Category) ([]driving.IngestResult, error) {
	results := make([]driving.IngestResult, 0, len(paths))
	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, errors.Join(append(errs, err)...)
		}

		result := driving.IngestResult{Path: path}
		content, err := os.ReadFile(path)
		if err == nil {
			result.Document, err = s.Ingest(ctx, driving.IngestRequest{
				Name:     filepath.Base(path),
				Content:  content,
				Category: category,
			})
		}
		if err != nil {
			result.Err = err
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			logger.Warn("Failed to ingest %s: %v", path, err)
		}
		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

// OnDocumentIndexed extracts the document and adds its sections to the
// embedding store. It returns false when nothing changed.
func (s *LibraryService) OnDocumentIndexed(ctx context.Context, documentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("get document: %w", err)
	}
	return s.index(ctx, doc)
}

// index runs extraction and embedding for one document. Callers hold s.mu.
func (s *LibraryService) index(ctx context.Context, doc *domain.Document) (bool, error) {
	raw, err := s.content.Get(ctx, doc.URI)
	if err != nil {
		return false, fmt.Errorf("load content: %w", err)
	}

	hash := hashContent(raw.Content)
	if doc.IsIndexed() && doc.ContentHash == hash && s.embeddings.Contains(doc.ID) {
		logger.Debug("%s already indexed", doc.ID)
		return false, nil
	}

	raw.Name = doc.Name
	if raw.MIMEType == "" {
		raw.MIMEType = doc.MIMEType
	}

	extraction, err := s.extractor.Extract(ctx, doc.ID, raw)
	if err != nil {
		return false, err
	}
	if err := s.embeddings.Add(ctx, doc, extraction.Sections); err != nil {
		return false, err
	}

	doc.Title = extraction.Title
	doc.PageCount = extraction.PageCount
	doc.SectionCount = len(extraction.Sections)
	doc.ContentHash = hash
	doc.IndexedAt = s.now()
	if doc.MIMEType == "" {
		doc.MIMEType = raw.MIMEType
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return false, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Indexed %s: %d sections over %d pages", doc.DisplayName(), doc.SectionCount, doc.PageCount)
	return true, nil
}

// OnDocumentRemoved removes a document with its sections, embeddings and
// stored content. Unknown documents return false without error.
func (s *LibraryService) OnDocumentRemoved(ctx context.Context, documentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, documentID)
}

func (s *LibraryService) remove(ctx context.Context, documentID string) (bool, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get document: %w", err)
	}

	if err := s.embeddings.Remove(ctx, doc.ID); err != nil {
		return false, err
	}
	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("delete document: %w", err)
	}
	if err := s.content.Delete(ctx, doc.URI); err != nil {
		logger.Warn("Could not delete content of %s: %v", doc.ID, err)
	}

	logger.Info("Removed %s", doc.DisplayName())
	return true, nil
}

// discard removes a document whose first indexing failed.
func (s *LibraryService) discard(ctx context.Context, doc *domain.Document) {
	if err := s.embeddings.Remove(ctx, doc.ID); err != nil {
		logger.Warn("Rollback of %s: %v", doc.ID, err)
	}
	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Rollback of %s: %v", doc.ID, err)
	}
	if err := s.content.Delete(ctx, doc.URI); err != nil {
		logger.Warn("Rollback of %s: %v", doc.ID, err)
	}
}

// List returns documents ordered by upload time, optionally filtered by category.
func (s *LibraryService) List(ctx context.Context, category domain.Category) ([]domain.Document, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if category == "" {
		return docs, nil
	}
	filtered := make([]domain.Document, 0, len(docs))
	for i := range docs {
		if docs[i].Category == category {
			filtered = append(filtered, docs[i])
		}
	}
	return filtered, nil
}

// Get retrieves a document by ID.
func (s *LibraryService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Sections returns a document's sections in order.
func (s *LibraryService) Sections(ctx context.Context, documentID string) ([]domain.Section, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetSections(ctx, documentID)
}

// SetCategory changes a document's category.
func (s *LibraryService) SetCategory(ctx context.Context, documentID string, category domain.Category) error {
	if !category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Category == category {
		return nil
	}
	doc.Category = category
	return s.docStore.SaveDocument(ctx, doc)
}

// Navigate resolves a page location to a section.
//
// A section ID wins when given. Otherwise the first section covering the
// page whose body contains the text hint is chosen, then the first section
// starting on the page, then the last section starting before it.
//
// A page can hold several sections, so a bare (document, page) pair only
// finds the first of them. Pass the snippet's SectionID or its Extract as
// Text to land on the exact section.
func (s *LibraryService) Navigate(ctx context.Context, req domain.NavigationRequest) (*domain.Section, error) {
	if _, err := s.docStore.GetDocument(ctx, req.DocumentID); err != nil {
		return nil, err
	}
	if req.SectionID != "" {
		return s.docStore.GetSection(ctx, req.DocumentID, req.SectionID)
	}

	sections, err := s.docStore.GetSections(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: document %s has no sections", domain.ErrNotFound, req.DocumentID)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	if hint := strings.TrimSpace(req.Text); hint != "" {
		for i := range sections {
			sec := &sections[i]
			if sec.Page <= page && page <= max(sec.EndPage, sec.Page) && containsText(sec.Body, hint) {
				return sec, nil
			}
		}
	}

	for i := range sections {
		if sections[i].Page == page {
			return &sections[i], nil
		}
	}

	var before *domain.Section
	for i := range sections {
		if sections[i].Page < page {
			before = &sections[i]
		}
	}
	if before != nil {
		return before, nil
	}
	return nil, fmt.Errorf("%w: no section at page %d of %s", domain.ErrNotFound, page, req.DocumentID)
}

// ClearReading removes every transient reading document.
func (s *LibraryService) ClearReading(ctx context.Context) (int, error) {
	docs, err := s.List(ctx, domain.CategoryReading)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	var errs []error
	for i := range docs {
		ok, err := s.remove(ctx, docs[i].ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", docs[i].ID, err))
			continue
		}
		if ok {
			removed++
		}
	}
	return removed, errors.Join(errs...)
}

// Sync reconciles the content store with document records. Stored files
// without a record are ingested, records without content are removed and
// records missing from the index are re-indexed.
func (s *LibraryService) Sync(ctx context.Context) (*driving.SyncReport, error) {
	logger.Section("Library Sync")

	uris, err := s.content.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make(map[string]bool, len(uris))
	for _, uri := range uris {
		stored[uri] = true
	}
	known := make(map[string]bool, len(docs))

	report := &driving.SyncReport{}
	var errs []error

	for i := range docs {
		doc := &docs[i]
		known[doc.URI] = true
		if !stored[doc.URI] {
			if _, err := s.remove(ctx, doc.ID); err != nil {
				report.Failed++
				errs = append(errs, fmt.Errorf("%s: %w", doc.ID, err))
				continue
			}
			report.Removed++
			continue
		}
		changed, err := s.index(ctx, doc)
		if err != nil {
			report.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", doc.ID, err))
			continue
		}
		if changed {
			report.Reindexed++
		}
	}

	sort.Strings(uris)
	for _, uri := range uris {
		if known[uri] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, errors.Join(append(errs, err)...)
		}
		if _, err := s.adopt(ctx, uri); err != nil {
			report.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", uri, err))
			continue
		}
		report.Added++
	}

	logger.Info("Sync: %d added, %d removed, %d reindexed, %d failed",
		report.Added, report.Removed, report.Reindexed, report.Failed)
	return report, errors.Join(errs...)
}

// adopt creates a record for content already in the store and indexes it.
// On failure the record is dropped but the content is kept.
func (s *LibraryService) adopt(ctx context.Context, uri string) (*domain.Document, error) {
	raw, err := s.content.Get(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	if existing, err := s.docStore.GetDocumentByName(ctx, raw.Name); err == nil {
		existing.URI = uri
		if _, err := s.index(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Name:       raw.Name,
		URI:        uri,
		MIMEType:   raw.MIMEType,
		Category:   s.settings.DefaultCategory,
		UploadedAt: s.now(),
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if _, err := s.index(ctx, doc); err != nil {
		_ = s.embeddings.Remove(ctx, doc.ID)
		_ = s.docStore.DeleteDocument(ctx, doc.ID)
		return nil, err
	}
	return doc, nil
}

// Watch applies library directory changes until ctx is cancelled.
func (s *LibraryService) Watch(ctx context.Context) error {
	if s.watcher == nil {
		return fmt.Errorf("%w: no library watcher configured", domain.ErrInvalidInput)
	}

	changes, err := s.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch library: %w", err)
	}
	logger.Info("Watching library for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if err := s.apply(ctx, change); err != nil {
				logger.Warn("Library change %s %s: %v", change.Type, change.Document.URI, err)
			}
		}
	}
}

// apply handles one watcher event.
func (s *LibraryService) apply(ctx context.Context, change domain.RawDocumentChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uri := change.Document.URI
	doc, err := s.docStore.GetDocumentByURI(ctx, uri)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	switch change.Type {
	case domain.ChangeDeleted:
		if doc == nil {
			return nil
		}
		_, err := s.remove(ctx, doc.ID)
		return err
	default:
		if doc != nil {
			_, err := s.index(ctx, doc)
			return err
		}
		_, err := s.adopt(ctx, uri)
		return err
	}
}

// SourceDocument resolves the document a selection is taken from.
func (s *LibraryService) SourceDocument(ctx context.Context, documentID string, allowKnowledgeBase bool) (*domain.Document, error) {
	if documentID == "" {
		docs, err := s.List(ctx, domain.CategoryReading)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, fmt.Errorf("%w: no reading document to analyse from", domain.ErrNotFound)
		}
		return &docs[len(docs)-1], nil
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Category == domain.CategoryKnowledgeBase && !allowKnowledgeBase {
		return nil, fmt.Errorf("%w: %s is a knowledge-base document; reading documents are analysis sources",
			domain.ErrInvalidInput, doc.DisplayName())
	}
	return doc, nil
}

// Stats reports the size of the embedding store.
func (s *LibraryService) Stats() domain.LibraryStats {
	return s.embeddings.Stats()
}

func (s *LibraryService) category(c domain.Category) (domain.Category, error) {
	if c == "" {
		return s.settings.DefaultCategory, nil
	}
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, c)
	}
	return c, nil
}

// containsText matches a hint against a body, ignoring case and spacing.
func containsText(body, hint string) bool {
	if strings.Contains(body, hint) {
		return true
	}
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	return strings.Contains(norm(body), norm(hint))
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
