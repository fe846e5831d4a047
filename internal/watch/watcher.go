// Package watch rebuilds sidebars when their inputs change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sidebargen/internal/logfields"
)

// DefaultDebounce is the quiet window after the last change before a
// rebuild is triggered.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a set of files and directory trees.
// Files are watched through their parent directory, which survives
// editors that replace files on save. Directory trees are watched
// recursively; directories created later are added as they appear.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	files map[string]bool // absolute file paths
	trees map[string]bool // absolute directory roots
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Watcher for paths. Every path must exist.
func New(paths []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		files:    make(map[string]bool),
		trees:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.Add(paths...); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Add starts watching more paths. Paths already watched are ignored.
func (w *Watcher) Add(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve watch path %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		if info.IsDir() {
			if w.trees[abs] {
				continue
			}
			if err := w.addTree(abs); err != nil {
				return err
			}
			w.trees[abs] = true
			continue
		}
		if w.files[abs] {
			continue
		}
		dir := filepath.Dir(abs)
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.files[abs] = true
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", p, err)
		}
		return nil
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls onChange once the watched inputs have been quiet for the
// debounce window after a change. onChange runs on the Run goroutine, so
// changes made while it runs trigger one more call afterwards. Run returns
// when ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.DebugContext(ctx, "Input change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "File watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			onChange(ctx)
		}
	}
}

// relevant reports whether event touches a watched input. New directories
// inside a watched tree are added on the way.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if hidden(filepath.Base(name)) || strings.HasSuffix(name, "~") {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[name] {
		return true
	}
	for root := range w.trees {
		if name != root && !strings.HasPrefix(name, root+string(filepath.Separator)) {
			continue
		}
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(name); err == nil && info.IsDir() {
				if err := w.addTree(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
					w.logger.Warn("Failed to watch new directory", logfields.Path(name), logfields.Error(err))
				}
			}
		}
		return true
	}
	return false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
