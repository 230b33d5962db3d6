package domain

import (
	"mime"
	"path/filepath"
	"strings"
)

// Library MIME types.
const (
	MIMETypePDF      = "application/pdf"
	MIMETypeMarkdown = "text/markdown"
	MIMETypePlain    = "text/plain"
)

// customMIMETypes covers extensions the platform MIME table often lacks.
var customMIMETypes = map[string]string{
	".md":       MIMETypeMarkdown,
	".markdown": MIMETypeMarkdown,
	".txt":      MIMETypePlain,
	".text":     MIMETypePlain,
	".log":      "text/x-log",
	".csv":      "text/csv",
}

// DetectMIMEType derives a MIME type from a file name's extension.
// Names without an extension are treated as plain text.
func DetectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return MIMETypePlain
	}
	if t, ok := customMIMETypes[ext]; ok {
		return t
	}
	if ext == ".pdf" {
		return MIMETypePDF
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return "application/octet-stream"
}

// RawDocument represents opaque bytes fetched from the content store.
// It is the input of section extraction.
type RawDocument struct {
	// URI is the content store handle (file path, URL, etc).
	URI string

	// Name is the display name, usually the file name.
	Name string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains store-specific key-value pairs.
	Metadata map[string]any
}

// TextBlock is a run of text produced by a normaliser, located on a page.
// Block boundaries follow structural cues: headings, blank lines, layout gaps.
type TextBlock struct {
	Text     string
	Page     int
	FontSize float64

	// Level is the heading level (1..4) when the block is a heading, else 0.
	Level int
}

// IsHeading reports whether the block was detected as a heading.
func (b TextBlock) IsHeading() bool {
	return b.Level > 0
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// RawDocumentChange represents a change event from the content store watcher.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected document. Content is empty for deletions.
	Document RawDocument
}
