package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry selects the highest-priority normaliser for a MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// Register adds a normaliser under each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mime := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mime], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mime] = list
	}
}

// Normalise runs the best matching normaliser for raw.MIMEType.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	candidates := r.byMIME[raw.MIMEType]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, domain.NewExtractionError(raw.URI, domain.ExtractionUnsupported,
			fmt.Errorf("%w: %q", domain.ErrUnsupportedType, raw.MIMEType))
	}
	return candidates[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}
