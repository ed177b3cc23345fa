// Package middleware wraps the preview server's handlers with request logging, request
// metrics and panic recovery.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
)

// Chain returns middleware that logs and counts every request, and turns handler panics
// into a JSON 500 response.
func Chain(logger *slog.Logger, adapter *ferrors.HTTPErrorAdapter, rec metrics.Recorder) func(http.Handler) http.Handler {
	rec = metrics.OrNoop(rec)
	return func(next http.Handler) http.Handler {
		guarded := recoverPanics(logger, adapter, next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			guarded.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.IncHTTPRequest(status)
			logger.LogAttrs(r.Context(), slog.LevelDebug, "HTTP request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(status),
				logfields.Bytes(ww.BytesWritten()),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
				logfields.UserAgent(r.UserAgent()),
				logfields.RemoteAddr(r.RemoteAddr),
				logfields.RequestID(chimw.GetReqID(r.Context())))
		})
	}
}

func recoverPanics(logger *slog.Logger, adapter *ferrors.HTTPErrorAdapter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}
			logger.Error("HTTP handler panic",
				slog.String("panic", fmt.Sprint(rv)),
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path))
			adapter.WriteErrorResponse(w, r, ferrors.InternalError("internal server error").
				WithContext("method", r.Method).
				WithContext("path", r.URL.Path).
				Build())
		}()
		next.ServeHTTP(w, r)
	})
}
