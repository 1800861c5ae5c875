package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type fileState struct {
	size    int64
	modTime time.Time
	exists  bool
}

// Watcher reports when any of a fixed set of files changes. The files
// are rewritten atomically via rename, so it subscribes to their parent
// directories and compares size and mtime rather than tailing offsets.
type Watcher struct {
	paths        []string
	states       map[string]fileState
	mu           sync.Mutex
	pollInterval time.Duration
	onChange     func(paths []string)
	stop         chan struct{}
	wg           sync.WaitGroup
}

func New(paths []string, pollInterval time.Duration, onChange func(paths []string)) *Watcher {
	w := &Watcher{
		paths:        paths,
		states:       make(map[string]fileState),
		pollInterval: pollInterval,
		onChange:     onChange,
		stop:         make(chan struct{}),
	}
	for _, p := range paths {
		w.states[p] = statFile(p)
	}
	return w
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{size: info.Size(), modTime: info.ModTime(), exists: true}
}

// Start begins watching with fsnotify + polling fallback.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		dirs := make(map[string]bool)
		for _, p := range w.paths {
			dirs[filepath.Dir(p)] = true
		}
		for dir := range dirs {
			_ = fsw.Add(dir)
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case event, ok := <-fsw.Events:
					if !ok {
						return
					}
					if w.watched(event.Name) {
						w.checkFile(event.Name)
					}
				case <-w.stop:
					fsw.Close()
					return
				}
			}
		}()
	}

	// Polling fallback (always runs as safety net)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.pollAll()
			case <-w.stop:
				return
			}
		}
	}()

	return nil
}

// Stop signals goroutines to exit and waits for them to finish.
func (w *Watcher) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Watcher) watched(path string) bool {
	for _, p := range w.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (w *Watcher) checkFile(path string) {
	cur := statFile(path)

	w.mu.Lock()
	prev := w.states[path]
	changed := cur != prev
	if changed {
		w.states[path] = cur
	}
	w.mu.Unlock()

	if changed {
		w.onChange([]string{path})
	}
}

func (w *Watcher) pollAll() {
	// Collect stat results without holding the lock
	current := make(map[string]fileState, len(w.paths))
	for _, p := range w.paths {
		current[p] = statFile(p)
	}

	w.mu.Lock()
	var changed []string
	for _, p := range w.paths {
		if current[p] != w.states[p] {
			w.states[p] = current[p]
			changed = append(changed, p)
		}
	}
	w.mu.Unlock()

	if len(changed) > 0 {
		w.onChange(changed)
	}
}
