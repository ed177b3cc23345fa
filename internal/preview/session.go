package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/specbuilder/internal/build"
	"git.home.luguber.info/inful/specbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/livereload"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
	"git.home.luguber.info/inful/specbuilder/internal/notify"
	"git.home.luguber.info/inful/specbuilder/internal/render"
	"git.home.luguber.info/inful/specbuilder/internal/server/httpserver"
	"git.home.luguber.info/inful/specbuilder/internal/watch"
)

const shutdownTimeout = 5 * time.Second

// Session holds the components shared by the clean, build, watch, serve and start tasks.
type Session struct {
	cfg            *config.Config
	builder        *build.Builder
	hub            *livereload.Hub
	status         *buildStatus
	recorder       metrics.Recorder
	metricsHandler http.Handler

	notifyOnce sync.Once
	notifier   notify.Notifier
	closers    []func() error

	// connectNATS is replaced in tests.
	connectNATS func(ctx context.Context, cfg config.NATSConfig) (*notify.NATSNotifier, error)
}

// Option configures a Session.
type Option func(*Session)

// WithRenderer overrides the configured renderer.
func WithRenderer(r render.Renderer) Option {
	return func(s *Session) { s.builder = build.NewBuilder(s.cfg, r, build.WithRecorder(s.recorder)) }
}

// WithNotifier adds a notifier receiving every build and output event.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) { s.notifier = appendNotifier(s.notifier, n) }
}

// NewSession resolves the renderer and sets up metrics for cfg. Nothing is started.
func NewSession(cfg *config.Config, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:         cfg,
		status:      &buildStatus{},
		recorder:    metrics.NoopRecorder{},
		connectNATS: notify.ConnectNATS,
	}
	if cfg.Server.Metrics {
		reg := metrics.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(reg)
		s.metricsHandler = metrics.HTTPHandler(reg)
	}
	if cfg.Server.LiveReloadEnabled() {
		s.hub = livereload.NewHub(s.recorder)
		s.notifier = appendNotifier(s.notifier, notify.NewHubNotifier(s.hub))
	}

	for _, o := range opts {
		o(s)
	}
	if s.builder == nil {
		r, err := render.New(cfg.Renderer)
		if err != nil {
			return nil, err
		}
		s.builder = build.NewBuilder(cfg, r, build.WithRecorder(s.recorder))
	}
	return s, nil
}

// Builder returns the session's builder.
func (s *Session) Builder() *build.Builder { return s.builder }

// Recorder returns the metrics recorder shared by all components.
func (s *Session) Recorder() metrics.Recorder { return s.recorder }

// Clean empties the output directory.
func (s *Session) Clean(ctx context.Context) error {
	return s.builder.Clean(ctx)
}

// Build renders once and publishes the outcome to notifiers.
func (s *Session) Build(ctx context.Context) error {
	s.openNotifiers(ctx)
	report, err := s.builder.Build(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.status.record(report.ID, err)
			ev := notify.NewEvent(notify.KindBuildFailed)
			ev.BuildID = report.ID
			ev.Path = report.Source
			ev.Error = err.Error()
			s.publish(ctx, ev)
		}
		return err
	}
	s.status.record(report.ID, nil)
	ev := notify.NewEvent(notify.KindBuildSucceeded)
	ev.BuildID = report.ID
	ev.Path = report.Output
	s.publish(ctx, ev)
	return nil
}

// rebuild is the watcher callback; failures are reported, not returned.
func (s *Session) rebuild(ctx context.Context) {
	slog.Info("Change detected; rebuilding specification")
	_ = s.Build(ctx)
}

// Watch rebuilds whenever a source path changes, until ctx is done.
func (s *Session) Watch(ctx context.Context) error {
	s.openNotifiers(ctx)
	w, err := watch.New(s.cfg.Watch.Paths, s.cfg.Watch.Ignore, s.cfg.Watch.DebounceDuration(),
		watch.WithName("source"),
		watch.WithRecorder(s.recorder),
		watch.WithPollInterval(s.cfg.Watch.PollIntervalDuration()))
	if err != nil {
		return err
	}
	return w.Run(ctx, s.rebuild)
}

// Serve runs the HTTP servers and the output watcher until ctx is done.
func (s *Session) Serve(ctx context.Context) error {
	s.openNotifiers(ctx)
	outDir := s.builder.OutputDir()
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", outDir).Build()
	}

	opts := httpserver.Options{
		BuildStatus:    s.status,
		Recorder:       s.recorder,
		MetricsHandler: s.metricsHandler,
	}
	if s.hub != nil {
		opts.LiveReloadHub = s.hub
	}
	srv := httpserver.New(s.cfg, opts)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	ow, err := watch.New([]string{filepath.ToSlash(filepath.Join(outDir, "**", "*"))}, nil, s.cfg.Watch.DebounceDuration(),
		watch.WithName("output"),
		watch.WithRecorder(s.recorder),
		watch.WithPollInterval(s.cfg.Watch.PollIntervalDuration()))
	if err != nil {
		handleShutdown(srv)
		return err
	}
	watchErr := ow.Run(ctx, s.outputChanged)
	handleShutdown(srv)
	return watchErr
}

// Start performs an initial build and then runs the source watcher and the server side by
// side. A failed initial build is shown on the error page instead of aborting.
func (s *Session) Start(ctx context.Context, parallel func(ctx context.Context) error) error {
	if err := s.Build(ctx); err != nil && ctx.Err() == nil {
		slog.Warn("Initial build failed; serving error page until the next successful build", logfields.Error(err))
	}
	return parallel(ctx)
}

func (s *Session) outputChanged(ctx context.Context) {
	ev := notify.NewEvent(notify.KindOutputChanged)
	ev.Path = s.builder.OutputDir()
	s.publish(ctx, ev)
}

func (s *Session) publish(ctx context.Context, ev notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		slog.Warn("Notification failed", slog.String("kind", string(ev.Kind)), logfields.Error(err))
	}
}

// openNotifiers connects optional external notifiers once per session. A NATS outage
// degrades to local-only notifications.
func (s *Session) openNotifiers(ctx context.Context) {
	s.notifyOnce.Do(func() {
		natsCfg := s.cfg.Notify.NATS
		if natsCfg == nil || natsCfg.URL == "" {
			return
		}
		n, err := s.connectNATS(ctx, *natsCfg)
		if err != nil {
			slog.Warn("NATS notifications disabled", logfields.Error(err))
			return
		}
		s.notifier = appendNotifier(s.notifier, n)
		s.closers = append(s.closers, n.Close)
	})
}

// Close releases external connections.
func (s *Session) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// handleShutdown performs graceful shutdown of the HTTP servers.
func handleShutdown(srv *httpserver.Server) {
	slog.Info("Shutting down preview server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
}

func appendNotifier(existing, n notify.Notifier) notify.Notifier {
	switch {
	case existing == nil:
		return n
	case n == nil:
		return existing
	}
	if m, ok := existing.(notify.Multi); ok {
		return append(m, n)
	}
	return notify.Multi{existing, n}
}
