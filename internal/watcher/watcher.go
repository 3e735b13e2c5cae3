// Package watcher observes the template collection directory. The core never
// caches templates, so there is nothing to invalidate; the watcher exists to
// give operators a log of templates appearing, changing and disappearing
// while the service runs.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/docsmith/docsmith/internal/doc"
	"github.com/docsmith/docsmith/internal/logger"
)

var log = logger.ForComponent("watcher")

type Config struct {
	DebounceWindow time.Duration
	MaxBatchSize   int
	IgnorePatterns []string
}

func DefaultConfig() Config {
	return Config{
		DebounceWindow: 300 * time.Millisecond,
		MaxBatchSize:   100,
		IgnorePatterns: []string{"~$*", ".*", "*.tmp", "*.partial"},
	}
}

// Watcher watches one templates directory, debouncing bursts of editor
// events into batches.
type Watcher struct {
	config    Config
	dir       string
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func New(dir string, config Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		config:    config,
		dir:       dir,
		fsWatcher: fsWatcher,
	}
	w.debouncer = NewDebouncer(config.DebounceWindow, config.MaxBatchSize, w.onFlush)
	return w, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}
	log.Info("watching template collection", "dir", w.dir)

	go w.handleEvents(ctx)
	return nil
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	w.cancel()
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if te := w.convertEvent(event); te != nil {
				w.debouncer.Add(*te)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) convertEvent(event fsnotify.Event) *TemplateEvent {
	base := filepath.Base(event.Name)
	if w.shouldIgnore(base) {
		return nil
	}
	kind, ok := doc.KindForExt(filepath.Ext(base))
	if !ok {
		return nil
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventModify
	case event.Has(fsnotify.Remove):
		eventType = EventDelete
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return nil
	}

	return &TemplateEvent{
		Path:      event.Name,
		Kind:      kind,
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

func (w *Watcher) shouldIgnore(base string) bool {
	for _, pattern := range w.config.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) onFlush(events []TemplateEvent) {
	for _, e := range events {
		log.Info("template collection changed",
			"template", filepath.Base(e.Path),
			"document_type", e.Kind,
			"change", e.Type.String())
	}
}
