// Package watch re-runs verification when module files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc is called with the modules that changed since the last call, in
// the order they were passed to New.
type ChangeFunc func(ctx context.Context, modules []string)

// Watcher observes the directories of a fixed set of module files. Compilers
// often replace outputs by rename, so the parent directory is watched rather
// than the file itself.
type Watcher struct {
	modules  []string
	index    map[string]bool
	debounce time.Duration
	log      *zap.Logger
	watcher  *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New starts watching the parent directories of modules. The watch is active
// when New returns.
func New(modules []string, opts ...Option) (*Watcher, error) {
	if len(modules) == 0 {
		return nil, errors.New("no modules to watch")
	}

	w := &Watcher{
		index:    make(map[string]bool, len(modules)),
		debounce: DefaultDebounce,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w.watcher = fsw

	dirs := map[string]bool{}
	for _, m := range modules {
		abs, err := filepath.Abs(m)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", m, err)
		}
		if w.index[abs] {
			continue
		}
		w.index[abs] = true
		w.modules = append(w.modules, abs)

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Modules returns the absolute module paths being watched.
func (w *Watcher) Modules() []string {
	return slices.Clone(w.modules)
}

// Run delivers debounced changes to fn until ctx is cancelled or the watcher
// is closed. fn runs on the Run goroutine, so changes arriving while it works
// are batched into the next call. Cancellation is not an error.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	pending := map[string]bool{}
	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("module changed", zap.String("module", event.Name), zap.String("op", event.Op.String()))
			pending[filepath.Clean(event.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			changed := w.ordered(pending)
			clear(pending)
			fn(ctx, changed)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// relevant reports whether event touches a watched module with a content change.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.index[filepath.Clean(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) ordered(pending map[string]bool) []string {
	var changed []string
	for _, m := range w.modules {
		if pending[m] {
			changed = append(changed, m)
		}
	}
	return changed
}

// Close stops the watch. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
