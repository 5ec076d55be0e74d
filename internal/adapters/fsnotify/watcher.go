// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches the directories holding the column input files rather than the
// files themselves, so editors that save by writing a temp file and renaming
// it over the original are still seen. Events for other files in those
// directories are dropped, and rapid bursts per file are debounced: onChange
// fires once the file has been quiet for debounceInterval.
package fsnotify

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval collapses the several events one save often produces.
const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool
	mu      sync.Mutex

	// pending holds one trailing-edge timer per changed path.
	timersMu sync.Mutex
	pending  map[string]*time.Timer

	// onError receives watcher errors; nil drops them.
	onError func(error)
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:      fw,
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}, nil
}

// OnError registers a callback for errors reported by fsnotify. Must be
// called before Watch.
func (w *Watcher) OnError(fn func(error)) {
	w.onError = fn
}

// Watch starts monitoring files. onChange is called with the absolute path
// of each changed file after its burst of events has settled.
func (w *Watcher) Watch(files []string, onChange func(filePath string)) error {
	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if len(targets) == 0 {
		return fmt.Errorf("no files to watch")
	}
	for dir := range dirs {
		if err := w.fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := filepath.Clean(event.Name)
				if !targets[path] {
					continue
				}
				if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
					continue
				}

				w.schedule(path, onChange)

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				if w.onError != nil {
					w.onError(err)
				}

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)arms the timer for path so onChange sees the last write of
// a burst, not the first.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(debounceInterval, func() {
		w.timersMu.Lock()
		current := w.pending[path] == t
		if current {
			delete(w.pending, path)
		}
		w.timersMu.Unlock()
		if !current {
			return
		}
		select {
		case <-w.done:
			return
		default:
		}
		onChange(path)
	})
	w.pending[path] = t
}

// Stop ends monitoring and releases all resources. After Stop returns the
// event goroutine has exited. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()

	w.timersMu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.timersMu.Unlock()
	return err
}
