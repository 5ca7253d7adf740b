// Package watch ingests documents dropped into a local directory.
// Files appearing in the watched directory are registered and run
// through the ingestion pipeline automatically.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/docvault-labs/docvault/internal/core/domain"
	"github.com/docvault-labs/docvault/internal/core/ports/driven"
	"github.com/docvault-labs/docvault/internal/core/ports/driving"
	"github.com/docvault-labs/docvault/internal/extractors"
	"github.com/docvault-labs/docvault/internal/logger"
)

// debounceDelay is how long a file must stay quiet before ingestion
// starts. Copies in progress emit a burst of write events.
const debounceDelay = 500 * time.Millisecond

// job describes one file ready for ingestion.
type job struct {
	path     string
	mimeType string
}

// Watcher monitors a drop directory and feeds new files into the
// ingestion pipeline under a fixed owner.
type Watcher struct {
	dir      string
	ownerID  string
	store    driven.ChunkStore
	ingestor driving.Ingestor

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher for dir that ingests on behalf of ownerID.
func New(dir, ownerID string, store driven.ChunkStore, ingestor driving.Ingestor) *Watcher {
	return &Watcher{
		dir:      dir,
		ownerID:  ownerID,
		store:    store,
		ingestor: ingestor,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches the directory until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching directory", "dir", w.dir, "owner_id", w.ownerID)

	for {
		select {
		case <-ctx.Done():
			w.cancelTimers()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			j := w.handleEvent(event)
			if j == nil {
				continue
			}
			w.schedule(ctx, *j)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// handleEvent decides whether an event warrants ingestion. Directories,
// hidden files, unknown extensions and non-write operations are skipped.
func (w *Watcher) handleEvent(event fsnotify.Event) *job {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}

	if isHidden(event.Name) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}

	mimeType := extractors.MIMEForPath(event.Name)
	if mimeType == "" {
		logger.Debug("skipping file with unknown extension", "path", event.Name)
		return nil
	}

	return &job{path: event.Name, mimeType: mimeType}
}

// schedule defers ingestion until the file has been quiet for the
// debounce window, collapsing event bursts into one run.
func (w *Watcher) schedule(ctx context.Context, j job) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[j.path]; ok {
		timer.Stop()
	}

	w.timers[j.path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.timers, j.path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.process(ctx, j)
	})
}

// cancelTimers stops all pending debounce timers.
func (w *Watcher) cancelTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// process registers the dropped file as a document and ingests it.
func (w *Watcher) process(ctx context.Context, j job) {
	doc := &domain.Document{
		ID:       uuid.NewString(),
		OwnerID:  w.ownerID,
		Name:     filepath.Base(j.path),
		MIMEType: j.mimeType,
	}

	if err := w.store.SaveDocument(ctx, doc); err != nil {
		logger.Warn("failed to register dropped file", "path", j.path, "error", err)
		return
	}

	result := w.ingestor.Ingest(ctx, driving.IngestRequest{
		DocumentID: doc.ID,
		OwnerID:    w.ownerID,
		FilePath:   j.path,
		MIMEType:   j.mimeType,
	})
	if result.Err != nil {
		logger.Warn("dropped file ingestion failed",
			"path", j.path,
			"terminal", domain.Terminal(result.Err),
			"error", result.Err)
		return
	}

	logger.Info("dropped file ingested",
		"path", j.path,
		"document_id", doc.ID,
		"chunks", result.ChunksProcessed)
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
