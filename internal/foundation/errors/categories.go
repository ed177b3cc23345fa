package errors

import (
	"log/slog"
	"net/http"
	"slices"
)

// ErrorCategory classifies a failure by the part of the tool it came from. The category
// alone decides the CLI exit code and the HTTP status.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryRender covers failures of the delegated renderer (ecmarkup or a custom command).
	CategoryRender     ErrorCategory = "render"
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	CategoryWatch   ErrorCategory = "watch"
	CategoryNetwork ErrorCategory = "network"

	CategoryServer   ErrorCategory = "server"
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

type categoryTraits struct {
	exitCode   int
	httpStatus int
}

var traits = map[ErrorCategory]categoryTraits{
	CategoryValidation: {2, http.StatusBadRequest},
	CategoryConfig:     {7, http.StatusBadRequest},
	CategoryNetwork:    {8, http.StatusBadGateway},
	CategoryInternal:   {10, http.StatusInternalServerError},
	CategoryNotFound:   {11, http.StatusNotFound},
	CategoryBuild:      {11, http.StatusUnprocessableEntity},
	CategoryRender:     {11, http.StatusUnprocessableEntity},
	CategoryFileSystem: {11, http.StatusInternalServerError},
	CategoryWatch:      {12, http.StatusServiceUnavailable},
	CategoryServer:     {12, http.StatusServiceUnavailable},
	CategoryRuntime:    {12, http.StatusServiceUnavailable},
}

// ExitCode is the process exit status for a failure of this category; 1 when unknown.
func (c ErrorCategory) ExitCode() int {
	if t, ok := traits[c]; ok {
		return t.exitCode
	}
	return 1
}

// HTTPStatus is the response status for a failure of this category; 500 when unknown.
func (c ErrorCategory) HTTPStatus() int {
	if t, ok := traits[c]; ok {
		return t.httpStatus
	}
	return http.StatusInternalServerError
}

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // task aborts
	SeverityError   ErrorSeverity = "error"   // current build fails, watch keeps going
	SeverityWarning ErrorSeverity = "warning" // degraded, e.g. notifications off
)

// Level maps the severity onto a slog level.
func (s ErrorSeverity) Level() slog.Level {
	if s == SeverityWarning {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// RetryStrategy tells callers whether repeating the operation can help.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user" // fix the source, install the renderer, free the port
)

// Automatic reports whether the operation may be retried without user intervention.
func (r RetryStrategy) Automatic() bool {
	return r == RetryBackoff
}

// ErrorContext carries structured fields (paths, ports, task names) attached to an error.
type ErrorContext map[string]any

// Set adds or updates a context value, allocating the map on first use.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// attrs returns the context as slog attributes in key order.
func (c ErrorContext) attrs() []slog.Attr {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, c[k]))
	}
	return out
}
