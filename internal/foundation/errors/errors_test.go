package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedErrorMessage(t *testing.T) {
	plain := NewError(CategoryConfig, "invalid configuration").Build()
	assert.Equal(t, "config: invalid configuration", plain.Error())

	wrapped := WrapError(errors.New("exit status 1"), CategoryRender, "renderer failed").Build()
	assert.Equal(t, "render: renderer failed: exit status 1", wrapped.Error())
}

func TestClassifiedErrorDetection(t *testing.T) {
	inner := RenderError("ecmarkup failed").Build()
	wrapped := fmt.Errorf("task build: %w", inner)

	got, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, HasCategory(wrapped, CategoryRender))
	assert.False(t, HasCategory(wrapped, CategoryBuild))

	assert.False(t, IsClassified(errors.New("plain")))
	assert.Equal(t, CategoryInternal, CategoryOf(errors.New("plain")))
	assert.Equal(t, CategoryRender, CategoryOf(wrapped))
}

func TestErrorBuilder(t *testing.T) {
	cause := errors.New("permission denied")
	b := WrapError(cause, CategoryFileSystem, "clean output").
		Warning().
		Retryable().
		WithContext("dir", "docs")
	err := b.Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryBackoff, err.RetryStrategy())
	assert.True(t, err.CanRetry())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "docs", err.Context()["dir"])

	b.WithContext("dir", "elsewhere")
	assert.Equal(t, "docs", err.Context()["dir"], "built error must not see later builder changes")
}

func TestConvenienceConstructors(t *testing.T) {
	cases := []struct {
		err      *ClassifiedError
		category ErrorCategory
		severity ErrorSeverity
		retry    RetryStrategy
	}{
		{ConfigError("x").Build(), CategoryConfig, SeverityFatal, RetryUserAction},
		{ValidationError("x").Build(), CategoryValidation, SeverityFatal, RetryNever},
		{RenderError("x").Build(), CategoryRender, SeverityError, RetryUserAction},
		{InternalError("x").Build(), CategoryInternal, SeverityFatal, RetryNever},
		{NewError(CategoryWatch, "x").Build(), CategoryWatch, SeverityError, RetryNever},
	}
	for _, c := range cases {
		t.Run(string(c.category), func(t *testing.T) {
			assert.Equal(t, c.category, c.err.Category())
			assert.Equal(t, c.severity, c.err.Severity())
			assert.Equal(t, c.retry, c.err.RetryStrategy())
			assert.False(t, c.err.CanRetry())
		})
	}
}

func TestCategoryTraits(t *testing.T) {
	assert.Equal(t, 2, CategoryValidation.ExitCode())
	assert.Equal(t, 7, CategoryConfig.ExitCode())
	assert.Equal(t, 11, CategoryRender.ExitCode())
	assert.Equal(t, 12, CategoryServer.ExitCode())
	assert.Equal(t, 1, ErrorCategory("mystery").ExitCode())

	assert.Equal(t, http.StatusNotFound, CategoryNotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrorCategory("mystery").HTTPStatus())
}

func TestSeverityLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, SeverityFatal.Level())
	assert.Equal(t, slog.LevelError, SeverityError.Level())
	assert.Equal(t, slog.LevelWarn, SeverityWarning.Level())
}

func TestErrorIsMatchesCategoryAndMessage(t *testing.T) {
	sentinel := NewError(CategoryNotFound, "source missing").Build()
	err := fmt.Errorf("build: %w", NewError(CategoryNotFound, "source missing").WithContext("path", "x").Build())
	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, NewError(CategoryNotFound, "other").Build())
}
