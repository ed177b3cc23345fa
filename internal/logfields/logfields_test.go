package logfields

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

func TestKeysAreStable(t *testing.T) {
	attrs := map[string]slog.Attr{
		"task":        Task("build"),
		"build_id":    BuildID("b-1"),
		"source":      Source("spec/index.html"),
		"output":      Output("docs"),
		"renderer":    Renderer("ecmarkup"),
		"port":        Port(8080),
		"status":      Status(200),
		"duration_ms": DurationMS(1.5),
		"request_id":  RequestID("rid"),
	}
	for key, a := range attrs {
		assert.Equal(t, key, a.Key)
	}
	assert.Equal(t, int64(8080), Port(8080).Value.Int64())
	assert.Equal(t, 1.5, DurationMS(1.5).Value.Float64())
}

func TestError(t *testing.T) {
	assert.Empty(t, Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("x", Error(ferrors.RenderError("ecmarkup failed").WithContext("line", 3).Build()))
	assert.Contains(t, buf.String(), "error.category=render")
	assert.Contains(t, buf.String(), "error.line=3")
}
