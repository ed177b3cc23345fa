package httpserver

import (
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/specbuilder/internal/livereload"
	"git.home.luguber.info/inful/specbuilder/internal/server/handlers"
)

// Handler returns the docs router. It is exposed for tests; Start serves the same router.
func (s *Server) Handler() http.Handler {
	mon := handlers.NewMonitoringHandlers(filepath.Join(s.outputDir, s.artifact), s.opts.BuildStatus)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.mchain)

	r.Get("/healthz", mon.HandleHealthCheck)
	r.Get("/readyz", mon.HandleReadiness)
	if s.opts.MetricsHandler != nil {
		r.Handle("/metrics", s.opts.MetricsHandler)
	}

	var root http.Handler = http.HandlerFunc(s.serveOutput)
	if s.liveReloadEnabled() {
		root = livereload.Inject(root, s.liveReloadPort)
	}
	root = noStore(root)
	r.Handle("/*", root)
	return r
}

func (s *Server) docsServer() *http.Server {
	return &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// serveOutput serves the output directory, falling back to status pages while no
// artifact has been published yet.
func (s *Server) serveOutput(w http.ResponseWriter, r *http.Request) {
	artifact := filepath.Join(s.outputDir, s.artifact)
	if _, err := os.Stat(artifact); err != nil {
		s.handleStatusPage(w, r)
		return
	}

	// Index fallback: "/" shows the artifact when it is not itself named index.html.
	if r.URL.Path == "/" && s.artifact != "index.html" {
		if _, err := os.Stat(filepath.Join(s.outputDir, "index.html")); err != nil {
			http.ServeFile(w, r, artifact)
			return
		}
	}

	http.FileServer(http.Dir(s.outputDir)).ServeHTTP(w, r)
}

// handleStatusPage determines which status page to show and renders it.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	if s.opts.BuildStatus != nil {
		if ok, buildErr := s.opts.BuildStatus.BuildState(); buildErr != nil && !ok {
			s.renderBuildErrorPage(w, r, buildErr)
			return
		}
	}

	if r.URL.Path == "/" || r.URL.Path == "" || r.URL.Path == "/"+s.artifact {
		s.renderBuildPendingPage(w, r)
		return
	}

	// Other paths may still exist (assets copied by an earlier build).
	http.FileServer(http.Dir(s.outputDir)).ServeHTTP(w, r)
}

// renderBuildErrorPage renders an error page when the build fails.
func (s *Server) renderBuildErrorPage(w http.ResponseWriter, r *http.Request, buildErr error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)

	errorMsg := "Unknown error"
	if buildErr != nil {
		errorMsg = buildErr.Error()
	}

	_, _ = fmt.Fprintf(w, `<!doctype html><html><head><meta charset="utf-8"><title>Build Failed</title>%s<style>body{font-family:sans-serif;max-width:800px;margin:50px auto;padding:20px}h1{color:#d32f2f}pre{background:#f5f5f5;padding:15px;border-radius:4px;overflow-x:auto;white-space:pre-wrap}</style></head><body><h1>Build Failed</h1><p>The specification failed to build. Fix the error below and save to rebuild automatically.</p><h2>Error Details:</h2><pre>%s</pre><p><small>This page will refresh automatically when you fix the error.</small></p>%s</body></html>`,
		s.refreshMeta(), html.EscapeString(errorMsg), s.liveReloadScript(r))
}

// renderBuildPendingPage renders a page shown while the first build is in progress.
func (s *Server) renderBuildPendingPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)

	_, _ = fmt.Fprintf(w, `<!doctype html><html><head><meta charset="utf-8"><title>Building</title>%s</head><body><h1>Specification is being built</h1><p>The document hasn't been rendered yet. This page will be replaced automatically once rendering completes.</p>%s</body></html>`,
		s.refreshMeta(), s.liveReloadScript(r))
}

// liveReloadScript returns the livereload script tag if enabled, empty string otherwise.
// Status pages are not 200 responses, so Inject leaves them alone.
func (s *Server) liveReloadScript(r *http.Request) string {
	if !s.liveReloadEnabled() {
		return ""
	}
	return livereload.ScriptTag(livereload.RequestHost(r), s.liveReloadPort)
}

// refreshMeta polls instead when live reload is off.
func (s *Server) refreshMeta() string {
	if s.liveReloadEnabled() {
		return ""
	}
	return `<meta http-equiv="refresh" content="2">`
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
