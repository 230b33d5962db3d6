// Package filesystem keeps uploaded documents as plain files in the library
// directory, so users can also add and remove documents with a file manager.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
)

var _ driven.ContentStore = (*Store)(nil)

// Store is a flat directory of documents. A document's handle is its
// absolute file path.
type Store struct {
	root string
}

// NewStore opens (creating if needed) the library directory at root.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: library path is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve library path: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the library directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes content to root/name. The write goes through a hidden temp
// file and a rename, so watchers never see a partial document.
func (s *Store) Put(ctx context.Context, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validName(name); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, name)
	tmp, err := os.CreateTemp(s.root, ".lens-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	return path, nil
}

// Get reads the document at uri.
func (s *Store) Get(ctx context.Context, uri string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, uri)
		}
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}

	name := filepath.Base(path)
	return &domain.RawDocument{
		URI:      path,
		Name:     name,
		MIMEType: domain.DetectMIMEType(name),
		Content:  content,
	}, nil
}

// Delete removes the document at uri. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(uri)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", uri, err)
	}
	return nil
}

// List returns the handles of every visible regular file, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}

	uris := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() || isHidden(entry.Name()) {
			continue
		}
		uris = append(uris, filepath.Join(s.root, entry.Name()))
	}
	sort.Strings(uris)
	return uris, nil
}

// resolve maps a handle to a path, refusing anything outside root.
func (s *Store) resolve(uri string) (string, error) {
	path := filepath.Clean(uri)
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	if filepath.Dir(path) != s.root {
		return "", fmt.Errorf("%w: %s is outside the library", domain.ErrInvalidInput, uri)
	}
	return path, nil
}

func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return fmt.Errorf("%w: document name %q must not contain a path", domain.ErrInvalidInput, name)
	case isHidden(name):
		return fmt.Errorf("%w: document name %q must not start with a dot", domain.ErrInvalidInput, name)
	}
	return nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are path syntax, not hidden names.
func isHidden(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == filepath.Separator }) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
