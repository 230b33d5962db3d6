package driven

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// DocumentStore persists documents, their sections and the sections' embeddings.
// A document exclusively owns its sections; deleting it deletes them.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByName retrieves the document with the given display name.
	GetDocumentByName(ctx context.Context, name string) (*domain.Document, error)

	// GetDocumentByURI retrieves the document stored at the given content handle.
	GetDocumentByURI(ctx context.Context, uri string) (*domain.Document, error)

	// ListDocuments returns all documents ordered by upload time.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document, its sections and their embeddings.
	DeleteDocument(ctx context.Context, id string) error

	// ReplaceSections atomically swaps a document's sections and embeddings.
	// Either all new sections are stored or the previous set is left intact.
	ReplaceSections(ctx context.Context, documentID string, sections []domain.IndexedSection) error

	// DeleteSections removes a document's sections and embeddings only.
	DeleteSections(ctx context.Context, documentID string) error

	// GetSections retrieves a document's sections in order, without vectors.
	GetSections(ctx context.Context, documentID string) ([]domain.Section, error)

	// GetSection retrieves one section of a document.
	GetSection(ctx context.Context, documentID, sectionID string) (*domain.Section, error)

	// LoadIndexed returns every stored section with its vector, for index rebuilds.
	LoadIndexed(ctx context.Context) ([]domain.IndexedSection, error)
}
