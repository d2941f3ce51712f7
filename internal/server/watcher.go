package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher uses fsnotify to watch the snapshot file for changes
// and triggers a callback with debouncing. Editors and
// exporters often write a file in several bursts; the debounce
// window collapses them into one rebuild.
type Watcher struct {
	path     string
	onChange func()
	watcher  *fsnotify.Watcher
	debounce time.Duration
	pending  bool
	lastHit  time.Time
	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewWatcher creates a file watcher that calls onChange when
// the file at path is modified, after the debounce period
// elapses. The file's directory is watched, so the watch
// survives rename-replace writes.
func NewWatcher(
	path string, debounce time.Duration, onChange func(),
) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback is nil: %w", os.ErrInvalid)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fsw,
		debounce: debounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		now:      time.Now,
	}, nil
}

// Start begins processing file events in a goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop stops the watcher and waits for it to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		w.watcher.Close()
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

// handleEvent records a pending change when the watched file
// itself was written, created, or renamed into place.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	w.mu.Lock()
	w.pending = true
	w.lastHit = w.now()
	w.mu.Unlock()
}

// flush fires the callback once the debounce window has been
// quiet.
func (w *Watcher) flush() {
	w.mu.Lock()
	ready := w.pending && w.now().Sub(w.lastHit) >= w.debounce
	if ready {
		w.pending = false
	}
	w.mu.Unlock()

	if ready {
		w.onChange()
	}
}
