package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Stored values are copied on the way in and out.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	sections  map[string][]domain.IndexedSection
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		sections:  make(map[string][]domain.IndexedSection),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = copyDocument(*doc)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = copyDocument(doc)
	return &doc, nil
}

// GetDocumentByName retrieves the document with the given display name.
func (s *DocumentStore) GetDocumentByName(_ context.Context, name string) (*domain.Document, error) {
	return s.find(func(d *domain.Document) bool { return d.Name == name })
}

// GetDocumentByURI retrieves the document stored at the given handle.
func (s *DocumentStore) GetDocumentByURI(_ context.Context, uri string) (*domain.Document, error) {
	return s.find(func(d *domain.Document) bool { return d.URI == uri })
}

func (s *DocumentStore) find(match func(*domain.Document) bool) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if match(&doc) {
			doc = copyDocument(doc)
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns all documents ordered by upload time, then ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, copyDocument(doc))
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.Before(docs[j].UploadedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// DeleteDocument removes a document and its sections.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.sections, id)
	return nil
}

// ReplaceSections swaps a document's sections in one step.
func (s *DocumentStore) ReplaceSections(_ context.Context, documentID string, sections []domain.IndexedSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return domain.ErrNotFound
	}
	stored := make([]domain.IndexedSection, len(sections))
	for i, sec := range sections {
		stored[i] = domain.IndexedSection{
			Section: sec.Section,
			Vector:  append([]float32(nil), sec.Vector...),
		}
		stored[i].Section.DocumentID = documentID
	}
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].Section.Order < stored[j].Section.Order
	})
	s.sections[documentID] = stored
	return nil
}

// DeleteSections removes a document's sections only.
func (s *DocumentStore) DeleteSections(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sections, documentID)
	return nil
}

// GetSections retrieves a document's sections in order.
func (s *DocumentStore) GetSections(_ context.Context, documentID string) ([]domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.sections[documentID]
	sections := make([]domain.Section, len(stored))
	for i := range stored {
		sections[i] = stored[i].Section
	}
	return sections, nil
}

// GetSection retrieves one section of a document.
func (s *DocumentStore) GetSection(_ context.Context, documentID, sectionID string) (*domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sec := range s.sections[documentID] {
		if sec.Section.ID == sectionID {
			section := sec.Section
			return &section, nil
		}
	}
	return nil, domain.ErrNotFound
}

// LoadIndexed returns every stored section with its vector.
func (s *DocumentStore) LoadIndexed(_ context.Context) ([]domain.IndexedSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.IndexedSection
	for _, stored := range s.sections {
		for _, sec := range stored {
			all = append(all, domain.IndexedSection{
				Section: sec.Section,
				Vector:  append([]float32(nil), sec.Vector...),
			})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Section.DocumentID != all[j].Section.DocumentID {
			return all[i].Section.DocumentID < all[j].Section.DocumentID
		}
		return all[i].Section.Order < all[j].Section.Order
	})
	return all, nil
}

func copyDocument(doc domain.Document) domain.Document {
	if doc.Metadata != nil {
		meta := make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		doc.Metadata = meta
	}
	return doc
}
