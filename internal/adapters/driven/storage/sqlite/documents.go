package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, name, uri, title, mime_type, category, page_count, section_count,
	content_hash, metadata, uploaded_at, indexed_at`

const sectionColumns = `id, document_id, position, title, body, page, end_page, level, font_size, word_count`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	var indexedAt sql.NullTime
	if doc.IsIndexed() {
		indexedAt = sql.NullTime{Time: doc.IndexedAt.UTC(), Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			uri = excluded.uri,
			title = excluded.title,
			mime_type = excluded.mime_type,
			category = excluded.category,
			page_count = excluded.page_count,
			section_count = excluded.section_count,
			content_hash = excluded.content_hash,
			metadata = excluded.metadata,
			uploaded_at = excluded.uploaded_at,
			indexed_at = excluded.indexed_at
	`, doc.ID, doc.Name, doc.URI, doc.Title, doc.MIMEType, string(doc.Category),
		doc.PageCount, doc.SectionCount, doc.ContentHash, string(metadataJSON),
		doc.UploadedAt.UTC(), indexedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// GetDocumentByName retrieves the document with the given display name.
func (s *documentStore) GetDocumentByName(ctx context.Context, name string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE name = ?`, name)
	return scanDocument(row)
}

// GetDocumentByURI retrieves the document stored at the given handle.
func (s *documentStore) GetDocumentByURI(ctx context.Context, uri string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE uri = ? ORDER BY uploaded_at LIMIT 1`, uri)
	return scanDocument(row)
}

// ListDocuments returns all documents ordered by upload time.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document. Sections cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ReplaceSections swaps a document's sections and embeddings in one transaction.
func (s *documentStore) ReplaceSections(ctx context.Context, documentID string, sections []domain.IndexedSection) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE id = ?", documentID).Scan(&exists); err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sections WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing sections: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sections (`+sectionColumns+`, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range sections {
		sec := &sections[i].Section
		if _, err := stmt.ExecContext(ctx, sec.ID, documentID, sec.Order, sec.Title, sec.Body,
			sec.Page, sec.EndPage, sec.Level, sec.FontSize, sec.WordCount,
			encodeVector(sections[i].Vector)); err != nil {
			return fmt.Errorf("saving section %s: %w", sec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteSections removes a document's sections only.
func (s *documentStore) DeleteSections(ctx context.Context, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sections WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting sections: %w", err)
	}
	return nil
}

// GetSections retrieves a document's sections in order.
func (s *documentStore) GetSections(ctx context.Context, documentID string) ([]domain.Section, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE document_id = ? ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.Section //nolint:prealloc // size unknown from query
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return sections, nil
}

// GetSection retrieves one section of a document.
func (s *documentStore) GetSection(ctx context.Context, documentID, sectionID string) (*domain.Section, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE document_id = ? AND id = ?`, documentID, sectionID)
	return scanSection(row)
}

// LoadIndexed returns every stored section with its vector.
func (s *documentStore) LoadIndexed(ctx context.Context) ([]domain.IndexedSection, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sectionColumns+`, embedding FROM sections ORDER BY document_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var all []domain.IndexedSection //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sec domain.Section
		var blob []byte
		if err := rows.Scan(&sec.ID, &sec.DocumentID, &sec.Order, &sec.Title, &sec.Body,
			&sec.Page, &sec.EndPage, &sec.Level, &sec.FontSize, &sec.WordCount, &blob); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("section %s/%s: %w", sec.DocumentID, sec.ID, err)
		}
		all = append(all, domain.IndexedSection{Section: sec, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return all, nil
}

// scanDocument scans a single document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var category, metadataJSON string
	var indexedAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Name, &doc.URI, &doc.Title, &doc.MIMEType, &category,
		&doc.PageCount, &doc.SectionCount, &doc.ContentHash, &metadataJSON,
		&doc.UploadedAt, &indexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Category = domain.Category(category)
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}

// scanSection scans a single section row without its embedding.
func scanSection(row rowScanner) (*domain.Section, error) {
	var sec domain.Section
	if err := row.Scan(&sec.ID, &sec.DocumentID, &sec.Order, &sec.Title, &sec.Body,
		&sec.Page, &sec.EndPage, &sec.Level, &sec.FontSize, &sec.WordCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning section: %w", err)
	}
	return &sec, nil
}
