package driving

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// LibraryService manages the document library and keeps the embedding
// store in step with it.
type LibraryService interface {
	// Ingest stores an uploaded document and indexes it.
	Ingest(ctx context.Context, req IngestRequest) (*domain.Document, error)

	// IngestFiles ingests each file independently and reports per file.
	IngestFiles(ctx context.Context, paths []string, category domain.Category) ([]IngestResult, error)

	// OnDocumentIndexed extracts the document's sections and adds them to
	// the embedding store. Returns false when the document is already
	// indexed with identical content.
	OnDocumentIndexed(ctx context.Context, documentID string) (bool, error)

	// OnDocumentRemoved removes the document and its sections from the
	// library. Returns false when the document was unknown.
	OnDocumentRemoved(ctx context.Context, documentID string) (bool, error)

	// List returns documents, optionally filtered by category ("" for all).
	List(ctx context.Context, category domain.Category) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Sections returns a document's sections in order.
	Sections(ctx context.Context, documentID string) ([]domain.Section, error)

	// SetCategory changes a document's category.
	SetCategory(ctx context.Context, documentID string, category domain.Category) error

	// Navigate resolves a page location to a section of the document.
	Navigate(ctx context.Context, req domain.NavigationRequest) (*domain.Section, error)

	// ClearReading removes every document in the reading category.
	ClearReading(ctx context.Context) (int, error)

	// Sync reconciles stored content with document records.
	Sync(ctx context.Context) (*SyncReport, error)

	// Watch applies library directory changes until ctx is cancelled.
	Watch(ctx context.Context) error

	// SourceDocument resolves the document a selection comes from. An empty
	// ID picks the most recently uploaded reading document. Knowledge-base
	// documents are rejected unless allowKnowledgeBase is set.
	SourceDocument(ctx context.Context, documentID string, allowKnowledgeBase bool) (*domain.Document, error)

	// Stats reports index size.
	Stats() domain.LibraryStats
}

// IngestRequest describes a document upload.
type IngestRequest struct {
	// Name is the display name, usually the file name.
	Name string

	// Content is the raw document bytes.
	Content []byte

	// Category defaults to the configured library category when empty.
	Category domain.Category
}

// IngestResult reports the outcome of ingesting one file.
type IngestResult struct {
	Path     string
	Document *domain.Document
	Err      error
}

// SyncReport summarises a reconciliation pass.
type SyncReport struct {
	Added     int
	Removed   int
	Reindexed int
	Failed    int
}
