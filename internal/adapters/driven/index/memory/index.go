// Package memory provides an in-memory nearest-neighbour section index.
//
// Readers load an immutable snapshot through an atomic pointer. Writers
// serialise on a mutex, copy the snapshot, apply one document's change and
// swap the copy in, so a query sees a document's sections all at once or
// not at all.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.SectionIndex = (*Index)(nil)

// entry is one indexed section with its precomputed norm.
type entry struct {
	section domain.Section
	vector  []float64
	norm    float64
}

// docEntries holds every entry of one document.
type docEntries struct {
	doc     driven.IndexDocument
	entries []entry
}

// snapshot is immutable once published.
type snapshot struct {
	docs       map[string]*docEntries
	sections   int
	dimensions int
}

// Index is a copy-on-write brute-force cosine index.
type Index struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	closed  atomic.Bool
}

// New creates an empty index.
func New() *Index {
	idx := &Index{}
	idx.current.Store(&snapshot{docs: map[string]*docEntries{}})
	return idx
}

// Replace installs a document's sections, dropping previous entries.
// All vectors must share the dimensions of the rest of the index.
func (i *Index) Replace(_ context.Context, doc driven.IndexDocument, sections []domain.IndexedSection) error {
	if i.closed.Load() {
		return domain.ErrVectorIndexUnavailable
	}

	entries := make([]entry, 0, len(sections))
	dims := 0
	for _, s := range sections {
		if dims == 0 {
			dims = len(s.Vector)
		}
		if len(s.Vector) == 0 || len(s.Vector) != dims {
			return fmt.Errorf("%w: section %s has %d dims, want %d",
				domain.ErrDimensionMismatch, s.Section.ID, len(s.Vector), dims)
		}
		vec := make([]float64, len(s.Vector))
		var sum float64
		for j, v := range s.Vector {
			vec[j] = float64(v)
			sum += vec[j] * vec[j]
		}
		sec := s.Section
		sec.Marks = nil
		entries = append(entries, entry{section: sec, vector: vec, norm: math.Sqrt(sum)})
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	old := i.current.Load()
	next := clone(old, doc.ID)
	if len(entries) > 0 {
		if next.dimensions != 0 && next.dimensions != dims {
			return fmt.Errorf("%w: index has %d dims, document %s has %d",
				domain.ErrDimensionMismatch, next.dimensions, doc.ID, dims)
		}
		next.docs[doc.ID] = &docEntries{doc: doc, entries: entries}
		next.sections += len(entries)
		next.dimensions = dims
	}
	i.current.Store(next)
	return nil
}

// Remove drops all entries of a document. Unknown IDs are a no-op.
func (i *Index) Remove(_ context.Context, documentID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	old := i.current.Load()
	if _, ok := old.docs[documentID]; !ok {
		return nil
	}
	i.current.Store(clone(old, documentID))
	return nil
}

// clone copies s without the given document. The per-document entry
// slices are shared since they are never mutated.
func clone(s *snapshot, without string) *snapshot {
	next := &snapshot{docs: make(map[string]*docEntries, len(s.docs))}
	for id, d := range s.docs {
		if id == without {
			continue
		}
		next.docs[id] = d
		next.sections += len(d.entries)
	}
	if next.sections > 0 {
		next.dimensions = s.dimensions
	}
	return next
}

// Search returns up to limit sections by descending cosine similarity.
// Ties break by document upload time, then document ID, then section order.
func (i *Index) Search(ctx context.Context, query []float32, excludeDocumentID string, limit int) ([]domain.Candidate, error) {
	if i.closed.Load() {
		return nil, domain.ErrVectorIndexUnavailable
	}
	snap := i.current.Load()
	if limit <= 0 || snap.sections == 0 {
		return []domain.Candidate{}, nil
	}
	if len(query) != snap.dimensions {
		return nil, fmt.Errorf("%w: query has %d dims, index has %d",
			domain.ErrDimensionMismatch, len(query), snap.dimensions)
	}

	q := make([]float64, len(query))
	var sum float64
	for j, v := range query {
		q[j] = float64(v)
		sum += q[j] * q[j]
	}
	qNorm := math.Sqrt(sum)

	candidates := make([]domain.Candidate, 0, snap.sections)
	for id, d := range snap.docs {
		if id == excludeDocumentID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for k := range d.entries {
			e := &d.entries[k]
			candidates = append(candidates, domain.Candidate{
				Section:      e.section,
				DocumentName: d.doc.Name,
				UploadedAt:   d.doc.UploadedAt,
				RawScore:     cosine(q, qNorm, e.vector, e.norm),
			})
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := &candidates[a], &candidates[b]
		if ca.RawScore != cb.RawScore {
			return ca.RawScore > cb.RawScore
		}
		if !ca.UploadedAt.Equal(cb.UploadedAt) {
			return ca.UploadedAt.Before(cb.UploadedAt)
		}
		if ca.Section.DocumentID != cb.Section.DocumentID {
			return ca.Section.DocumentID < cb.Section.DocumentID
		}
		return ca.Section.Order < cb.Section.Order
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// cosine computes the similarity in double precision, clamped to [-1, 1].
// A zero vector has similarity 0 with everything.
func cosine(a []float64, aNorm float64, b []float64, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	sim := dot / (aNorm * bNorm)
	return math.Max(-1, math.Min(1, sim))
}

// Contains reports whether the document has entries.
func (i *Index) Contains(documentID string) bool {
	_, ok := i.current.Load().docs[documentID]
	return ok
}

// Stats reports the number of documents, sections and the dimensions.
func (i *Index) Stats() domain.LibraryStats {
	snap := i.current.Load()
	return domain.LibraryStats{
		Documents:  len(snap.docs),
		Sections:   snap.sections,
		Dimensions: snap.dimensions,
	}
}

// Close releases the index. Later calls fail with ErrVectorIndexUnavailable.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed.Store(true)
	i.current.Store(&snapshot{docs: map[string]*docEntries{}})
	return nil
}
