package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// SectionIndex is the queryable nearest-neighbour index over sections.
// Mutations for one document are atomic with respect to concurrent queries:
// a query sees all of a document's sections or none of them.
type SectionIndex interface {
	// Replace installs a document's sections, dropping any previous entries.
	Replace(ctx context.Context, doc IndexDocument, sections []domain.IndexedSection) error

	// Remove drops all entries of a document. Unknown IDs are a no-op.
	Remove(ctx context.Context, documentID string) error

	// Search returns up to limit sections by descending cosine similarity,
	// skipping excludeDocumentID. Ties break by upload time then order.
	Search(ctx context.Context, query []float32, excludeDocumentID string, limit int) ([]domain.Candidate, error)

	// Contains reports whether a document has entries in the index.
	Contains(documentID string) bool

	// Stats reports the number of indexed documents, sections and the dimensions.
	Stats() domain.LibraryStats

	// Close releases resources.
	Close() error
}

// IndexDocument carries the document attributes the index needs for
// presentation and tie-breaking.
type IndexDocument struct {
	ID         string
	Name       string
	UploadedAt time.Time
}
