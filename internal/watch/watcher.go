// Package watch rebuilds a schema whenever it changes on disk
package watch

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// changeOps are the events that mean a file has new content. Editors that
// save atomically produce Create or Rename instead of Write.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Filter selects the files a FileWatcher reports. Both lists hold
// filepath.Match globs applied to base names.
type Filter struct {
	// Patterns is the allow list; empty allows every file
	Patterns []string
	Ignored  []string
}

// Match reports whether path passes the filter. Dotfiles never do.
func (f Filter) Match(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || globAny(f.Ignored, base) {
		return false
	}
	return len(f.Patterns) == 0 || globAny(f.Patterns, base)
}

func globAny(globs []string, name string) bool {
	return slices.ContainsFunc(globs, func(glob string) bool {
		ok, _ := filepath.Match(glob, name)
		return ok
	})
}

// FileWatcher reports batches of changed files from a set of directories
type FileWatcher struct {
	fs        *fsnotify.Watcher
	dirs      []string
	filter    Filter
	debouncer *Debouncer
	logger    *zap.Logger

	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
	wg       sync.WaitGroup
}

// NewFileWatcher creates a watcher calling onChange with the sorted paths
// that changed during each quiet period of length debounce
func NewFileWatcher(dirs []string, filter Filter, debounce time.Duration, onChange func([]string) error, logger *zap.Logger) (*FileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw := &FileWatcher{
		fs:     fs,
		dirs:   dirs,
		filter: filter,
		logger: logger,
		done:   make(chan struct{}),
	}
	fw.debouncer = NewDebouncer(debounce, func(files []string) {
		if err := onChange(files); err != nil {
			logger.Error("handling file changes failed", zap.Strings("files", files), zap.Error(err))
		}
	})
	return fw, nil
}

// Start watches every directory and begins delivering events
func (fw *FileWatcher) Start() error {
	for _, dir := range fw.dirs {
		if err := fw.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", dir))
	}

	fw.wg.Add(1)
	go fw.loop()
	return nil
}

// Stop ends the event loop and drops pending changes. It is safe to call
// more than once.
func (fw *FileWatcher) Stop() error {
	fw.stopOnce.Do(func() {
		close(fw.done)
		fw.wg.Wait()
		fw.debouncer.Stop()
		fw.stopErr = fw.fs.Close()
	})
	return fw.stopErr
}

func (fw *FileWatcher) loop() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			if event.Op&changeOps == 0 || !fw.filter.Match(event.Name) {
				continue
			}
			fw.logger.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			fw.debouncer.Add(event.Name)

		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case <-fw.done:
			return
		}
	}
}

// Debouncer batches paths and hands them to fire once no new path has
// arrived for the configured delay
type Debouncer struct {
	delay time.Duration
	fire  func([]string)

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer. fire runs on its own goroutine without
// locks held, so it may call Add.
func NewDebouncer(delay time.Duration, fire func([]string)) *Debouncer {
	return &Debouncer{
		delay:   delay,
		fire:    fire,
		pending: make(map[string]bool),
	}
}

// Add records path and restarts the quiet period
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[path] = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.flush)
		return
	}
	d.timer.Reset(d.delay)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	clear(d.pending)
	d.mu.Unlock()

	slices.Sort(paths)
	d.fire(paths)
}

// Stop cancels a pending batch. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
