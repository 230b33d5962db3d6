package driven

import (
	"context"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// ContentStore holds the raw bytes of uploaded documents.
type ContentStore interface {
	// Put stores content under the given display name and returns its handle.
	Put(ctx context.Context, name string, content []byte) (string, error)

	// Get returns the raw content for a handle.
	// Returns domain.ErrNotFound if nothing is stored there.
	Get(ctx context.Context, uri string) (*domain.RawDocument, error)

	// Delete removes stored content. Missing content is not an error.
	Delete(ctx context.Context, uri string) error

	// List returns the handles of all stored documents.
	List(ctx context.Context) ([]string, error)
}

// LibraryWatcher reports changes made to the content store from outside
// the application, such as files copied into the library directory.
type LibraryWatcher interface {
	// Watch streams changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close stops watching.
	Close() error
}
