package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

func TestDefaultMatchesStockLayout(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "spec/index.html", cfg.Source)
	assert.Equal(t, "docs", cfg.Output.Directory)
	assert.Equal(t, []string{"spec/**/*"}, cfg.Watch.Paths)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 35729, cfg.Server.LiveReloadPort)
	assert.True(t, cfg.Server.LiveReloadEnabled())
	assert.Equal(t, RendererEcmarkup, cfg.Renderer.Name)
	assert.Equal(t, "ecmarkup", cfg.Renderer.Command)
	assert.Equal(t, []string{"{src}", "{out}"}, cfg.Renderer.Args)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.DebounceDuration())
	assert.Zero(t, cfg.Watch.PollIntervalDuration())
	require.NoError(t, Validate(cfg))
}

func TestParseEmptyDocumentYieldsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesAndNormalizes(t *testing.T) {
	data := []byte(`
source: src/main.md
output:
  directory: ./out/
renderer:
  name: MD
watch:
  paths: ["src/**/*.md"]
  debounce: 50ms
  poll_interval: 2s
server:
  port: 9000
  live_reload: false
logging:
  level: WARNING
  format: JSON
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "src/main.md", cfg.Source)
	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Equal(t, RendererMarkdown, cfg.Renderer.Name)
	assert.Empty(t, cfg.Renderer.Command)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.DebounceDuration())
	assert.Equal(t, 2*time.Second, cfg.Watch.PollIntervalDuration())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Server.LiveReloadEnabled())
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParseExpandsEnvironment(t *testing.T) {
	t.Setenv("SPEC_DIR", "proposal")
	cfg, err := Parse([]byte("source: ${SPEC_DIR}/index.html\n"))
	require.NoError(t, err)
	assert.Equal(t, "proposal/index.html", cfg.Source)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvSource, "other/spec.html")
	t.Setenv(EnvOutput, "public")
	t.Setenv(EnvPort, "8181")
	t.Setenv(EnvRenderer, "copy")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Parse([]byte("source: spec/index.html\n"))
	require.NoError(t, err)
	assert.Equal(t, "other/spec.html", cfg.Source)
	assert.Equal(t, "public", cfg.Output.Directory)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, RendererCopy, cfg.Renderer.Name)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("sauce: spec/index.html\n"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestParseValidationFailures(t *testing.T) {
	cases := []struct {
		name     string
		yaml     string
		category ferrors.ErrorCategory
	}{
		{"unknown renderer", "renderer:\n  name: pandoc\n", ferrors.CategoryConfig},
		{"command without binary", "renderer:\n  name: command\n", ferrors.CategoryValidation},
		{"output is cwd", "output:\n  directory: .\n", ferrors.CategoryValidation},
		{"output is root", "output:\n  directory: /\n", ferrors.CategoryValidation},
		{"output is parent", "output:\n  directory: ..\n", ferrors.CategoryValidation},
		{"output escapes upward", "output:\n  directory: ../site\n", ferrors.CategoryValidation},
		{"port out of range", "server:\n  port: 70000\n", ferrors.CategoryValidation},
		{"port clash", "server:\n  port: 35729\n", ferrors.CategoryValidation},
		{"bad debounce", "watch:\n  debounce: soon\n", ferrors.CategoryValidation},
		{"bad pattern", "watch:\n  paths: [\"spec/[\"]\n", ferrors.CategoryValidation},
		{"nats without url", "notify:\n  nats:\n    subject: x\n", ferrors.CategoryValidation},
		{"nats bad backoff", "notify:\n  nats:\n    url: nats://x\n    retry_backoff: jittered\n", ferrors.CategoryValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Equal(t, tc.category, ferrors.CategoryOf(err))
		})
	}
}

func TestPortClashIgnoredWithoutLiveReload(t *testing.T) {
	_, err := Parse([]byte("server:\n  port: 35729\n  live_reload: false\n"))
	require.NoError(t, err)
}

func TestNATSDefaults(t *testing.T) {
	cfg, err := Parse([]byte("notify:\n  nats:\n    url: nats://localhost:4222\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Notify.NATS)
	assert.Equal(t, DefaultNATSSubject, cfg.Notify.NATS.Subject)
	assert.Equal(t, 3, cfg.Notify.NATS.MaxRetries)
	assert.Equal(t, time.Second, cfg.Notify.NATS.InitialDelay())
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, cfg.Source)
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, cfg.Source)
	assert.Equal(t, []string{"img/**/*", "*.css"}, cfg.Assets)

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(path, true))
}

func TestLogLevelSlog(t *testing.T) {
	assert.Equal(t, "DEBUG", NormalizeLogLevel("Debug").SlogLevel().String())
	assert.Equal(t, "INFO", NormalizeLogLevel("bogus").SlogLevel().String())
	assert.Equal(t, "WARN", LogLevelWarn.SlogLevel().String())
	assert.Equal(t, "ERROR", LogLevelError.SlogLevel().String())
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat("console"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat(" JSON "))
}

func TestMain(m *testing.M) {
	for _, k := range []string{EnvSource, EnvOutput, EnvPort, EnvRenderer, EnvLogLevel} {
		_ = os.Unsetenv(k)
	}
	os.Exit(m.Run())
}
