package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document or section does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document format no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtraction indicates a document could not be turned into sections.
	// It is localised to one document and never affects others.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding oracle is not configured
	// or unreachable. Adding and querying are impossible without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrServiceUnavailable indicates analysis ran in degraded mode: the oracle
	// or the index did not answer in time. Callers may retry.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrVectorIndexUnavailable indicates the section index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates an embedding whose length differs from the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Narrative summaries fall back to a count summary.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// ExtractionReason classifies why extraction failed.
type ExtractionReason string

// Extraction failure reasons.
const (
	ExtractionCorrupt     ExtractionReason = "corrupt"
	ExtractionEncrypted   ExtractionReason = "encrypted"
	ExtractionEmpty       ExtractionReason = "empty"
	ExtractionUnsupported ExtractionReason = "unsupported"
)

// ExtractionError reports a bad, unsupported or empty document.
// It matches ErrExtraction with errors.Is.
type ExtractionError struct {
	URI    string
	Reason ExtractionReason
	Err    error
}

// NewExtractionError creates an extraction error for the given document.
func NewExtractionError(uri string, reason ExtractionReason, err error) *ExtractionError {
	return &ExtractionError{URI: uri, Reason: reason, Err: err}
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.URI, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URI, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrExtraction) hold for every extraction error.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// IsNoContent reports whether the document simply has no extractable text,
// as opposed to being damaged or of an unknown format.
func (e *ExtractionError) IsNoContent() bool {
	return e.Reason == ExtractionEmpty
}

// AsExtractionError unwraps err to an ExtractionError if it contains one.
func AsExtractionError(err error) (*ExtractionError, bool) {
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr, true
	}
	return nil, false
}
