// Package watcher feeds documents dropped into a watch folder through the
// preparation pipeline. It is a thin driving adapter: filesystem events in,
// pipeline calls out.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
	"github.com/docforge/docforge/internal/core/ports/driving"
	"github.com/docforge/docforge/internal/logging"
)

// defaultSettle is how long a path must stay quiet before its latest event
// is acted on. Editors and download managers emit bursts of writes for a
// single logical save.
const defaultSettle = 500 * time.Millisecond

// Watcher observes one directory (non-recursive) and mirrors supported
// files into the pipeline: a new file is uploaded and processed, a
// modified file replaces its previous document, a removed file deletes it.
type Watcher struct {
	pipeline driving.DocumentPipeline
	registry driven.ExtractorRegistry
	cfg      domain.ProcessConfig
	log      logging.Logger
	settle   time.Duration

	mu   sync.Mutex
	docs map[string]string // absolute path -> document ID
}

// New creates a watcher that processes uploads with the given config.
func New(pipeline driving.DocumentPipeline, registry driven.ExtractorRegistry, cfg domain.ProcessConfig, log logging.Logger) *Watcher {
	return &Watcher{
		pipeline: pipeline,
		registry: registry,
		cfg:      cfg,
		log:      log.WithName("watcher"),
		settle:   defaultSettle,
		docs:     make(map[string]string),
	}
}

// Run watches dir until ctx is cancelled. Files already present when the
// watch starts are ingested first, so a folder populated while the program
// was down is not silently skipped.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch folder %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start filesystem watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.ingestExisting(ctx, dir)

	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	events := make(chan string)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.dispatch(ctx, ev, pending, events)

		case path := <-events:
			delete(pending, path)
			w.ingest(ctx, path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "filesystem watcher error")
		}
	}
}

// dispatch routes one filesystem event. Creates and writes are debounced
// per path; removes and renames act immediately.
func (w *Watcher) dispatch(ctx context.Context, ev fsnotify.Event, pending map[string]*time.Timer, events chan<- string) {
	if isHidden(ev.Name) {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		if t, ok := pending[ev.Name]; ok {
			t.Stop()
			delete(pending, ev.Name)
		}
		w.remove(ctx, ev.Name)

	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		if !w.supported(ev.Name) {
			return
		}
		if t, ok := pending[ev.Name]; ok {
			t.Stop()
		}
		path := ev.Name
		pending[path] = time.AfterFunc(w.settle, func() {
			select {
			case events <- path:
			case <-ctx.Done():
			}
		})
	}
}

// ingestExisting uploads supported files already sitting in the folder.
func (w *Watcher) ingestExisting(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.log.Error(err, "read watch folder", "dir", dir)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if w.supported(path) {
			w.ingest(ctx, path)
		}
	}
}

// ingest uploads one file and queues its first run. A path seen before
// replaces its previous document so the store tracks the file's latest
// content.
func (w *Watcher) ingest(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.log.Error(err, "read watched file", "path", path)
		return
	}

	w.remove(ctx, path)

	doc, err := w.pipeline.Upload(ctx, filepath.Base(path), data)
	if err != nil {
		w.log.Error(err, "upload watched file", "path", path)
		return
	}
	if err := w.pipeline.Process(ctx, doc.ID, w.cfg); err != nil {
		w.log.Error(err, "process watched file", "path", path, "document_id", doc.ID)
		return
	}

	w.mu.Lock()
	w.docs[path] = doc.ID
	w.mu.Unlock()
	w.log.Info("watched file queued", "path", path, "document_id", doc.ID)
}

// remove deletes the document previously uploaded for path, if any.
func (w *Watcher) remove(ctx context.Context, path string) {
	w.mu.Lock()
	id, ok := w.docs[path]
	delete(w.docs, path)
	w.mu.Unlock()
	if !ok {
		return
	}
	if err := w.pipeline.Delete(ctx, id); err != nil {
		w.log.Error(err, "delete watched document", "path", path, "document_id", id)
		return
	}
	w.log.Info("watched file removed", "path", path, "document_id", id)
}

// supported reports whether an extractor is registered for the file's
// extension.
func (w *Watcher) supported(path string) bool {
	if filepath.Ext(path) == "" {
		return false
	}
	return w.registry.Get(path) != nil
}

// isHidden reports whether any element of the path starts with a dot.
// "." and ".." themselves are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
