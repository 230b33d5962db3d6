package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the library category of a document.
type Category string

// Available library categories.
const (
	// CategoryReading is a transient document the user is currently reading.
	// Reading documents are the usual source of a selection.
	CategoryReading Category = "reading"

	// CategoryKnowledgeBase is a persistent reference document.
	CategoryKnowledgeBase Category = "knowledge_base"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	return c == CategoryReading || c == CategoryKnowledgeBase
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Description returns a human-readable description of the category.
func (c Category) Description() string {
	switch c {
	case CategoryReading:
		return "Reading (transient)"
	case CategoryKnowledgeBase:
		return "Knowledge base (persistent)"
	default:
		return "Unknown"
	}
}

// ParseCategory accepts the canonical names plus the dashed and legacy
// upload-type spellings ("fresh" for reading, "bulk" for knowledge base).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reading", "fresh":
		return CategoryReading, nil
	case "knowledge_base", "knowledge-base", "kb", "bulk":
		return CategoryKnowledgeBase, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
}

// Document represents an uploaded document in the library.
type Document struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`  // Display name, usually the file name
	URI          string         `json:"uri"`   // Content store handle
	Title        string         `json:"title"` // Title found during extraction
	MIMEType     string         `json:"mime_type"`
	Category     Category       `json:"category"`
	PageCount    int            `json:"page_count"`
	SectionCount int            `json:"section_count"`
	ContentHash  string         `json:"content_hash,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	IndexedAt    time.Time      `json:"indexed_at,omitempty"`
}

// IsIndexed reports whether the document's sections are queryable.
func (d *Document) IsIndexed() bool {
	return !d.IndexedAt.IsZero()
}

// DisplayName returns the best available label for the document.
func (d *Document) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Title != "" {
		return d.Title
	}
	return d.ID
}

// Section is an addressable, page-located chunk of a document's text.
// It is the unit of indexing and retrieval.
type Section struct {
	ID         string  `json:"id"` // Unique within the document
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title,omitempty"` // Empty when extraction found no heading
	Body       string  `json:"body"`
	Page       int     `json:"page"`     // 1-based page of the first character
	EndPage    int     `json:"end_page"` // Page of the last character
	Order      int     `json:"order"`    // Position within the document, tie-break only
	Level      int     `json:"level"`    // Heading level 1..4, 0 for untitled body
	FontSize   float64 `json:"font_size,omitempty"`
	WordCount  int     `json:"word_count"`

	// Marks locate page changes inside Body. They are only populated while
	// a document is being sectioned and are never persisted.
	Marks []PageMark `json:"-"`
}

// PageMark records that Body text from Offset onwards lies on Page.
type PageMark struct {
	Offset int
	Page   int
}

// PageAt returns the page of the body byte at offset.
func (s *Section) PageAt(offset int) int {
	if len(s.Marks) == 0 {
		if offset > 0 && s.EndPage > 0 && offset >= len(s.Body) {
			return s.EndPage
		}
		return s.Page
	}
	page := s.Marks[0].Page
	for _, m := range s.Marks {
		if m.Offset > offset {
			break
		}
		page = m.Page
	}
	return page
}

// DisplayTitle returns the section title or a synthesised "Section N".
func (s *Section) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return fmt.Sprintf("Section %d", s.Order+1)
}

// IndexedSection is a section together with its embedding.
// The vector never outlives its section.
type IndexedSection struct {
	Section Section
	Vector  []float32
}

// Candidate is a nearest-neighbour hit returned by the embedding store.
type Candidate struct {
	Section      Section
	DocumentName string
	UploadedAt   time.Time

	// RawScore is the cosine similarity in [-1, 1].
	RawScore float64
}

// LibraryStats summarises the state of the embedding store.
type LibraryStats struct {
	Documents  int `json:"documents"`
	Sections   int `json:"sections"`
	Dimensions int `json:"dimensions"`
}
