package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
	"git.home.luguber.info/inful/specbuilder/internal/render"
)

type upperRenderer struct {
	err error
}

func (upperRenderer) Name() string { return "upper" }

func (u upperRenderer) Render(_ context.Context, in render.Input) ([]byte, error) {
	if u.err != nil {
		return nil, u.err
	}
	return []byte(strings.ToUpper(string(in.Source))), nil
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes map[metrics.BuildOutcome]int
	observed int
}

func (c *countingRecorder) ObserveBuildDuration(time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observed++
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[metrics.BuildOutcome]int{}
	}
	c.outcomes[o]++
}

// layout creates <root>/spec/index.html and returns a config pointing at <root>/docs.
func layout(t *testing.T, content string) *config.Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "spec"), 0o750))
	src := filepath.Join(root, "spec", "index.html")
	require.NoError(t, os.WriteFile(src, []byte(content), 0o600))

	cfg := config.Default()
	cfg.Source = src
	cfg.Output.Directory = filepath.Join(root, "docs")
	return cfg
}

func TestBuildPublishesRenderedArtifact(t *testing.T) {
	cfg := layout(t, "<p>hello</p>")
	rec := &countingRecorder{}
	b := NewBuilder(cfg, upperRenderer{}, WithRecorder(rec))

	report, err := b.Build(context.Background())
	require.NoError(t, err)

	out := filepath.Join(cfg.Output.Directory, "index.html")
	assert.Equal(t, out, b.OutputPath())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<P>HELLO</P>", string(data))

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), report.Hash)
	assert.Equal(t, len(data), report.Bytes)
	assert.Equal(t, metrics.OutcomeSuccess, report.Outcome)
	assert.Equal(t, "upper", report.Renderer)
	_, err = uuid.Parse(report.ID)
	require.NoError(t, err)
	assert.Contains(t, report.Summary(), "success")

	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeSuccess])
	assert.Equal(t, 1, rec.observed)

	entries, err := os.ReadDir(cfg.Output.Directory)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestBuildReplacesPreviousArtifact(t *testing.T) {
	cfg := layout(t, "one")
	b := NewBuilder(cfg, upperRenderer{})
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg.Source, []byte("two"), 0o600))
	r2, err := b.Build(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(b.OutputPath())
	require.NoError(t, err)
	assert.Equal(t, "TWO", string(data))
	assert.Equal(t, 3, r2.Bytes)
}

func TestBuildMissingSource(t *testing.T) {
	cfg := layout(t, "x")
	cfg.Source = filepath.Join(filepath.Dir(cfg.Source), "nope.html")
	rec := &countingRecorder{}

	report, err := NewBuilder(cfg, upperRenderer{}, WithRecorder(rec)).Build(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
	assert.ErrorIs(t, err, ErrSourceNotFound)
	require.NotNil(t, report)
	assert.Equal(t, metrics.OutcomeFailed, report.Outcome)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeFailed])
	assert.NoDirExists(t, cfg.Output.Directory)
}

func TestBuildRendererErrorPropagates(t *testing.T) {
	cfg := layout(t, "x")
	cause := errors.New("ecmarkup: unknown biblio entry")

	_, err := NewBuilder(cfg, upperRenderer{err: cause}).Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, "index.html"))
}

func TestBuildCanceled(t *testing.T) {
	cfg := layout(t, "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewBuilder(cfg, upperRenderer{}).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, metrics.OutcomeCanceled, report.Outcome)
}

func TestBuildCopiesAssets(t *testing.T) {
	cfg := layout(t, "<p>spec</p>")
	specDir := filepath.Dir(cfg.Source)
	require.NoError(t, os.MkdirAll(filepath.Join(specDir, "img", "diagrams"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "img", "diagrams", "flow.svg"), []byte("<svg/>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "spec.css"), []byte("body{}"), 0o600))
	cfg.Assets = []string{"img/**/*", "*"}

	report, err := NewBuilder(cfg, upperRenderer{}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Assets)
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "img", "diagrams", "flow.svg"))
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "spec.css"))

	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<P>SPEC</P>", string(data), "source must not overwrite the artifact")
}

func TestBuildCleanBeforeBuild(t *testing.T) {
	cfg := layout(t, "x")
	cfg.Output.CleanBeforeBuild = true
	require.NoError(t, os.MkdirAll(cfg.Output.Directory, 0o750))
	stale := filepath.Join(cfg.Output.Directory, "stale.html")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	_, err := NewBuilder(cfg, upperRenderer{}).Build(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "index.html"))
}
