package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/specbuilder/internal/livereload"
)

// LiveReloadHandler returns the router of the live-reload port: the SSE stream at
// /livereload and the client script at /livereload.js. Pages are served from the docs
// port, so every response allows any origin.
func (s *Server) LiveReloadHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(allowAnyOrigin)
	r.Method(http.MethodGet, "/livereload", s.opts.LiveReloadHub)
	r.Method(http.MethodGet, "/livereload.js", livereload.ScriptHandler(s.liveReloadPort))
	return r
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// liveReloadServer has no write timeout; event streams stay open until the page or the
// server goes away.
func (s *Server) liveReloadServer() *http.Server {
	return &http.Server{
		Handler:           s.LiveReloadHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       5 * time.Minute,
	}
}
