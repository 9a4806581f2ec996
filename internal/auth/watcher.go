package auth

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// SessionWatcher notifies a callback when the session file changes, so
// consumers react to login/logout events instead of polling session
// state on an interval.
//
// The watch is on the containing directory: editors and os.WriteFile
// replace files in ways that would drop a watch on the file itself.
type SessionWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSessionWatcher creates a watcher for the session file at path.
// onChange is invoked after any create, write, remove, or rename of the
// file. The watcher must be started with Start().
func NewSessionWatcher(path string, onChange func()) (*SessionWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &SessionWatcher{
		watcher:  watcher,
		path:     path,
		onChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The session directory must exist.
func (w *SessionWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("session watcher already running")
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch session directory %s: %w", dir, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *SessionWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *SessionWatcher) loop() {
	defer w.wg.Done()

	base := filepath.Base(w.path)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.onChange()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
