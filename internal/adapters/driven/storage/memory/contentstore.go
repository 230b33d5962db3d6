package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// contentScheme prefixes handles issued by ContentStore.
const contentScheme = "mem://"

// ContentStore is an in-memory implementation of driven.ContentStore.
// Handles are derived from the display name, so storing the same name
// twice overwrites the earlier content.
type ContentStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewContentStore creates a new in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{files: make(map[string][]byte)}
}

// Put stores content under name.
func (s *ContentStore) Put(_ context.Context, name string, content []byte) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: invalid content name %q", domain.ErrInvalidInput, name)
	}
	uri := contentScheme + name

	s.mu.Lock()
	s.files[uri] = append([]byte(nil), content...)
	s.mu.Unlock()
	return uri, nil
}

// Get returns the content stored at uri.
func (s *ContentStore) Get(_ context.Context, uri string) (*domain.RawDocument, error) {
	s.mu.RLock()
	content, ok := s.files[uri]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	name := strings.TrimPrefix(uri, contentScheme)
	return &domain.RawDocument{
		URI:      uri,
		Name:     name,
		MIMEType: domain.DetectMIMEType(name),
		Content:  append([]byte(nil), content...),
	}, nil
}

// Delete removes content. Missing content is not an error.
func (s *ContentStore) Delete(_ context.Context, uri string) error {
	s.mu.Lock()
	delete(s.files, uri)
	s.mu.Unlock()
	return nil
}

// List returns all handles in sorted order.
func (s *ContentStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	uris := make([]string, 0, len(s.files))
	for uri := range s.files {
		uris = append(uris, uri)
	}
	s.mu.RUnlock()

	sort.Strings(uris)
	return uris, nil
}
