package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

type fileStamp struct {
	modTime int64
	size    int64
}

// Poller detects changes by periodically snapshotting modification times. It serves
// filesystems where fsnotify delivers no events (network mounts, some containers).
type Poller struct {
	matcher  *Matcher
	interval time.Duration
	trigger  func(path string)

	mu   sync.Mutex
	last map[string]fileStamp
}

// NewPoller creates a poller calling trigger with a changed path after each differing snapshot.
func NewPoller(m *Matcher, interval time.Duration, trigger func(path string)) *Poller {
	return &Poller{matcher: m, interval: interval, trigger: trigger}
}

// Run takes a baseline snapshot and polls on a gocron duration job until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	p.last = p.snapshot()
	p.mu.Unlock()

	s, err := gocron.NewScheduler()
	if err != nil {
		return ferrors.WrapError(fmt.Errorf("failed to create gocron scheduler: %w", err), ferrors.CategoryWatch,
			"failed to start poller").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(p.poll),
		gocron.WithName("watch-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return ferrors.WrapError(err, ferrors.CategoryWatch, "failed to schedule poll job").Build()
	}
	s.Start()

	<-ctx.Done()
	if err := s.Shutdown(); err != nil {
		slog.Warn("poller shutdown", slog.String("error", err.Error()))
	}
	return nil
}

func (p *Poller) poll() {
	snap := p.snapshot()

	p.mu.Lock()
	prev := p.last
	p.last = snap
	p.mu.Unlock()

	if changed, ok := diff(prev, snap); ok {
		p.trigger(changed)
	}
}

func (p *Poller) snapshot() map[string]fileStamp {
	snap := make(map[string]fileStamp)
	for _, root := range p.matcher.Roots() {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && shouldIgnoreEvent(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !p.matcher.Match(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			snap[path] = fileStamp{modTime: info.ModTime().UnixNano(), size: info.Size()}
			return nil
		})
	}
	return snap
}

// diff returns one path that differs between the snapshots.
func diff(prev, next map[string]fileStamp) (string, bool) {
	if maps.Equal(prev, next) {
		return "", false
	}
	for path, st := range next {
		if old, ok := prev[path]; !ok || old != st {
			return path, true
		}
	}
	for path := range prev {
		if _, ok := next[path]; !ok {
			return path, true
		}
	}
	return "", false
}
