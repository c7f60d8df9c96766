// Package watcher detects external edits to the settings document so a
// running daemon picks up changes made by the CLI or a text editor.
package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of events an atomic write produces.
const debounceDelay = 100 * time.Millisecond

// Watcher watches the settings document for changes.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	target     string
	changed    chan string
	done       chan struct{}
	debounceMu sync.Mutex
	debounce   *time.Timer
}

// New creates a watcher for the given settings file path.
func New(settingsPath string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		target:    settingsPath,
		changed:   make(chan string, 8),
		done:      make(chan struct{}),
	}, nil
}

// Changed returns the channel that receives the settings path after each
// debounced change.
func (w *Watcher) Changed() <-chan string {
	return w.changed
}

// Start begins watching. The parent directory is watched rather than the
// file itself so atomic replaces (write tmp, rename over target) are seen.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.target)); err != nil {
		return err
	}
	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	_ = w.fsWatcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("Settings watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Rename matters: atomic saves land as a rename onto the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Base(event.Name) != filepath.Base(w.target) {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, func() {
		select {
		case w.changed <- w.target:
		case <-w.done:
		}
	})
}
