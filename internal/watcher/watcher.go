// Package watcher reloads knowledge files when they change on disk, using fsnotify with debouncing.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches individual files and invokes onChange after they settle.
// It watches each file's parent directory so editors that save by
// write-to-temp-and-rename are still noticed.
type Watcher struct {
	files       map[string]struct{}
	dirRefs     map[string]int // parent dir -> number of watched files in it
	onChange    func(path string)
	onRemove    func(path string)
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger // optional; when set, logs debug events
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must be quiet before onChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnRemove sets a callback for when a watched file is removed.
func WithOnRemove(fn func(path string)) WatcherOption {
	return func(w *Watcher) { w.onRemove = fn }
}

// NewWatcher creates a watcher for files. onChange is called once per burst of
// writes to a watched file.
func NewWatcher(files []string, onChange func(path string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		files:       make(map[string]struct{}),
		dirRefs:     make(map[string]int),
		onChange:    onChange,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			w.files[abs] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	if w.logger != nil {
		w.logger.Debug("watcher starting", zap.Strings("files", w.filesLocked()), zap.Duration("debounce", w.debounce))
	}
	for f := range w.files {
		if err := w.addDirLocked(filepath.Dir(f)); err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.dirRefs = make(map[string]int)
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()
	go w.run(ctx, watcher.Events, watcher.Errors)
	return nil
}

func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !w.watching(path) {
		return
	}
	if w.logger != nil {
		w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	}
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.debounceChange(path)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// A rename away is followed by a Create when an editor swaps the file in.
		if _, err := os.Stat(path); err == nil {
			w.debounceChange(path)
			return
		}
		w.cancelDebounce(path)
		if w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

func (w *Watcher) watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[path]
	return ok
}

func (w *Watcher) debounceChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	t := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		logger := w.logger
		w.mu.Unlock()
		if logger != nil {
			logger.Debug("watcher reloading file (debounced)", zap.String("path", path))
		}
		if w.onChange != nil {
			w.onChange(path)
		}
	})
	w.debounceMap[path] = t
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// AddFile starts watching path. The file does not need to exist yet, but its
// directory does.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		return nil
	}
	if w.watcher != nil {
		if err := w.addDirLocked(filepath.Dir(abs)); err != nil {
			return err
		}
	}
	w.files[abs] = struct{}{}
	if w.logger != nil {
		w.logger.Debug("watcher file added", zap.String("path", abs))
	}
	return nil
}

// RemoveFile stops watching path.
func (w *Watcher) RemoveFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)
	if t, ok := w.debounceMap[abs]; ok {
		t.Stop()
		delete(w.debounceMap, abs)
	}
	if w.watcher == nil {
		return nil
	}
	dir := filepath.Dir(abs)
	w.dirRefs[dir]--
	if w.dirRefs[dir] <= 0 {
		delete(w.dirRefs, dir)
		_ = w.watcher.Remove(dir)
	}
	return nil
}

func (w *Watcher) addDirLocked(dir string) error {
	if w.dirRefs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirRefs[dir]++
	return nil
}

// Files returns the watched file paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filesLocked()
}

func (w *Watcher) filesLocked() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.dirRefs = make(map[string]int)
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
