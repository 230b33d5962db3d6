package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

var _ driven.LibraryWatcher = (*Watcher)(nil)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports files added, changed or removed in the library directory.
// Subdirectories and hidden files are ignored.
type Watcher struct {
	root string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher watches the library directory at root.
func NewWatcher(root string) *Watcher {
	return &Watcher{root: root}
}

// Watch starts watching and streams changes until ctx is cancelled or the
// watcher is closed. The channel is closed when watching stops.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("library path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library path error: %s is not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.watcher = fsw

	changes := make(chan domain.RawDocumentChange, 16)
	go w.run(ctx, fsw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- domain.RawDocumentChange) {
	defer close(changes)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Library watcher: %v", err)
		}
	}
}

// handleFsEvent maps a filesystem event to a document change, or nil when
// the event does not concern a visible document.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	if isHidden(filepath.Base(event.Name)) {
		return nil
	}

	var changeType domain.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		changeType = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		changeType = domain.ChangeDeleted
	default:
		return nil
	}

	name := filepath.Base(event.Name)
	if changeType != domain.ChangeDeleted {
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
	}

	return &domain.RawDocumentChange{
		Type: changeType,
		Document: domain.RawDocument{
			URI:      event.Name,
			Name:     name,
			MIMEType: domain.DetectMIMEType(name),
		},
	}
}

// Close stops watching. Further Watch calls fail.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	if w.watcher != nil {
		err := w.watcher.Close()
		w.watcher = nil
		return err
	}
	return nil
}
