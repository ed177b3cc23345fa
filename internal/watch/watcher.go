package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
)

// Watcher observes a set of globs and invokes a callback after changes settle.
type Watcher struct {
	name         string
	matcher      *Matcher
	debounce     time.Duration
	pollInterval time.Duration
	recorder     metrics.Recorder
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithName labels log lines and metrics (e.g. "source", "output").
func WithName(name string) Option { return func(w *Watcher) { w.name = name } }

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Watcher) { w.recorder = metrics.OrNoop(r) }
}

// WithPollInterval switches from fsnotify to polling when d > 0.
func WithPollInterval(d time.Duration) Option { return func(w *Watcher) { w.pollInterval = d } }

// New creates a watcher for the include globs minus the ignore globs.
func New(paths, ignore []string, debounce time.Duration, opts ...Option) (*Watcher, error) {
	m, err := NewMatcher(paths, ignore)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid watch configuration").Build()
	}
	w := &Watcher{
		name:     "source",
		matcher:  m,
		debounce: debounce,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Matcher exposes the compiled globs.
func (w *Watcher) Matcher() *Matcher { return w.matcher }

// Run blocks until parent is done, calling onChange (never concurrently with itself) after
// each settled burst of relevant changes. Watcher errors are logged, not returned; only
// failure to set up the watcher is an error.
func (w *Watcher) Run(parent context.Context, onChange func(ctx context.Context)) error {
	deb := NewDebouncer(w.debounce)
	defer deb.Stop()
	worker := NewWorker(onChange)

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-deb.C():
				w.recorder.IncRebuildTrigger()
				worker.Request()
			}
		}
	}()

	slog.Info("Watching for changes",
		slog.String("watcher", w.name),
		slog.Any("roots", w.matcher.Roots()),
		slog.Bool("polling", w.pollInterval > 0))

	if w.pollInterval > 0 {
		return NewPoller(w.matcher, w.pollInterval, w.trigger(deb)).Run(ctx)
	}
	return w.runNotify(ctx, w.trigger(deb))
}

func (w *Watcher) trigger(deb *Debouncer) func(path string) {
	return func(path string) {
		w.recorder.IncWatchEvent(w.name)
		slog.Debug("File change detected", slog.String("watcher", w.name), logfields.Path(path))
		deb.Trigger()
	}
}

func (w *Watcher) runNotify(ctx context.Context, trigger func(string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryWatch, "failed to create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	for _, root := range w.matcher.Roots() {
		addDirsRecursive(fw, root)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.String("watcher", w.name), logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func(string)) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(fw, ev.Name)
			// Files may land in a new directory before its watch is registered.
			if w.anyMatchBelow(ev.Name) {
				trigger(ev.Name)
			}
			return
		}
	}
	if w.matcher.Match(ev.Name) {
		trigger(ev.Name)
	}
}

func (w *Watcher) anyMatchBelow(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && w.matcher.Match(path) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && shouldIgnoreEvent(path) {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", slog.String("dir", path), logfields.Error(err))
			}
		}
		return nil
	})
}
