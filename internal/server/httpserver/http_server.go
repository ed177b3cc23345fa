package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	smw "git.home.luguber.info/inful/specbuilder/internal/server/middleware"
)

// Server is the preview server: rendered output on the docs port and, when enabled, the
// live-reload stream on a second port.
type Server struct {
	cfg       config.ServerConfig
	outputDir string // absolute
	artifact  string // base name of the rendered document
	opts      Options
	mchain    func(http.Handler) http.Handler

	endpoints      []*endpoint
	liveReloadPort int // actual port once bound; scripts embed it
}

// endpoint is one listening http.Server.
type endpoint struct {
	name string
	port int
	ln   net.Listener
	srv  *http.Server
}

// New constructs the server for cfg. Nothing is bound until Start.
func New(cfg *config.Config, opts Options) *Server {
	out := cfg.Output.Directory
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	return &Server{
		cfg:            cfg.Server,
		outputDir:      out,
		artifact:       filepath.Base(cfg.Source),
		opts:           opts,
		mchain:         smw.Chain(slog.Default(), ferrors.NewHTTPErrorAdapter(slog.Default()), opts.Recorder),
		liveReloadPort: cfg.Server.LiveReloadPort,
	}
}

func (s *Server) liveReloadEnabled() bool {
	return s.cfg.LiveReloadEnabled() && s.opts.LiveReloadHub != nil
}

// Start binds every port before serving any, so a busy port fails the whole start with
// one error naming all conflicts. Serving continues in the background until Stop.
func (s *Server) Start(ctx context.Context) error {
	eps := []*endpoint{{name: "docs", port: s.cfg.Port}}
	if s.liveReloadEnabled() {
		eps = append(eps, &endpoint{name: "livereload", port: s.cfg.LiveReloadPort})
	}
	if err := bindAll(ctx, s.cfg.Host, eps); err != nil {
		return err
	}

	// Pages embed the live-reload port, so it must be final before the docs router exists.
	if len(eps) > 1 {
		s.liveReloadPort = portOf(eps[1].ln.Addr())
		eps[1].srv = s.liveReloadServer()
	}
	eps[0].srv = s.docsServer()
	s.endpoints = eps
	for _, ep := range eps {
		go ep.serve()
	}

	docsPort := portOf(eps[0].ln.Addr())
	attrs := []slog.Attr{
		logfields.Port(docsPort),
		slog.String("url", "http://"+net.JoinHostPort(displayHost(s.cfg.Host), strconv.Itoa(docsPort))+"/"),
	}
	if len(eps) > 1 {
		attrs = append(attrs, slog.Int("livereload_port", s.liveReloadPort))
	}
	slog.LogAttrs(ctx, slog.LevelInfo, "Preview server listening", attrs...)
	return nil
}

func bindAll(ctx context.Context, host string, eps []*endpoint) error {
	var lc net.ListenConfig
	var errs []error
	for _, ep := range eps {
		ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(ep.port)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s port %d: %w", ep.name, ep.port, err))
			continue
		}
		ep.ln = ln
	}
	if len(errs) == 0 {
		return nil
	}
	for _, ep := range eps {
		if ep.ln != nil {
			_ = ep.ln.Close()
		}
	}
	return ferrors.WrapError(errors.Join(errs...), ferrors.CategoryServer, "cannot bind preview ports").
		UserAction().WithContext("host", host).Build()
}

func (ep *endpoint) serve() {
	if err := ep.srv.Serve(ep.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("HTTP server stopped unexpectedly", slog.String("server", ep.name), logfields.Error(err))
	}
}

func (s *Server) addr(name string) net.Addr {
	for _, ep := range s.endpoints {
		if ep.name == name {
			return ep.ln.Addr()
		}
	}
	return nil
}

// DocsAddr returns the bound docs address, or nil before Start.
func (s *Server) DocsAddr() net.Addr { return s.addr("docs") }

// LiveReloadAddr returns the bound live-reload address, or nil when disabled.
func (s *Server) LiveReloadAddr() net.Addr { return s.addr("livereload") }

// Stop ends the event streams, then shuts the servers down in reverse start order.
func (s *Server) Stop(ctx context.Context) error {
	if s.opts.LiveReloadHub != nil {
		s.opts.LiveReloadHub.Shutdown()
	}

	var errs []error
	for _, ep := range slices.Backward(s.endpoints) {
		if err := ep.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ep.name, err))
		}
	}
	if len(errs) > 0 {
		return ferrors.WrapError(errors.Join(errs...), ferrors.CategoryServer, "preview server shutdown incomplete").Build()
	}
	slog.Info("Preview server stopped")
	return nil
}

func portOf(a net.Addr) int {
	if tcp, ok := a.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

func displayHost(h string) string {
	switch h {
	case "", "0.0.0.0", "::":
		return "localhost"
	}
	return h
}
