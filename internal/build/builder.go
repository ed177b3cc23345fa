package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
	"git.home.luguber.info/inful/specbuilder/internal/render"
)

// Builder runs the clean and build tasks for one configuration.
type Builder struct {
	source           string
	outputDir        string
	assets           []string
	cleanBeforeBuild bool
	renderer         render.Renderer
	recorder         metrics.Recorder
}

// Option customizes a Builder.
type Option func(*Builder)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = metrics.OrNoop(r) }
}

// NewBuilder creates a Builder publishing cfg.Source through r into cfg.Output.Directory.
func NewBuilder(cfg *config.Config, r render.Renderer, opts ...Option) *Builder {
	b := &Builder{
		source:           cfg.Source,
		outputDir:        cfg.Output.Directory,
		assets:           cfg.Assets,
		cleanBeforeBuild: cfg.Output.CleanBeforeBuild,
		renderer:         r,
		recorder:         metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OutputDir returns the directory the builder publishes into.
func (b *Builder) OutputDir() string { return b.outputDir }

// OutputPath returns the path of the rendered artifact: the source basename inside the
// output directory.
func (b *Builder) OutputPath() string {
	return filepath.Join(b.outputDir, filepath.Base(b.source))
}

// Build renders the source document and publishes it atomically. The returned report is
// non-nil even when the build fails.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	report := &Report{
		ID:       uuid.NewString(),
		Source:   b.source,
		Output:   b.OutputPath(),
		Renderer: b.renderer.Name(),
		Start:    time.Now(),
	}

	err := b.build(ctx, report)
	canceled := err != nil && ctx.Err() != nil
	report.finish(err, canceled)

	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(report.Outcome)

	switch report.Outcome {
	case metrics.OutcomeSuccess:
		slog.Info("Build completed", slog.Any("report", report))
	case metrics.OutcomeCanceled:
		slog.Warn("Build canceled", slog.Any("report", report))
	default:
		slog.Error("Build failed", slog.Any("report", report), slog.String("error", err.Error()))
	}
	return report, err
}

func (b *Builder) build(ctx context.Context, report *Report) error {
	src, err := os.ReadFile(b.source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ferrors.WrapError(fmt.Errorf("%w: %w", ErrSourceNotFound, err), ferrors.CategoryNotFound, "source document not found").
				UserAction().WithContext("source", b.source).Build()
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source document").
			WithContext("source", b.source).Build()
	}

	if b.cleanBeforeBuild {
		if err := b.Clean(ctx); err != nil {
			return err
		}
	}

	out, err := b.renderer.Render(ctx, render.Input{SourcePath: b.source, Source: src, OutputPath: report.Output})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if ferrors.IsClassified(err) {
			return err
		}
		return ferrors.WrapError(err, ferrors.CategoryRender, "renderer failed").
			WithContext("renderer", b.renderer.Name()).Build()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeFileAtomic(report.Output, out); err != nil {
		return err
	}
	sum := sha256.Sum256(out)
	report.Bytes = len(out)
	report.Hash = hex.EncodeToString(sum[:])

	n, err := copyAssets(ctx, filepath.Dir(b.source), b.outputDir, b.assets, filepath.Base(b.source))
	report.Assets = n
	return err
}

// writeFileAtomic publishes data at path via a temp file in the same directory and a rename,
// so readers never observe a partially written artifact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", dir).Build()
	}
	tmp, err := os.CreateTemp(dir, ".specbuilder-*.tmp")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create temp file").
			WithContext("path", dir).Build()
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write artifact").WithContext("path", path).Build()
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to sync artifact").WithContext("path", path).Build()
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to close artifact").WithContext("path", path).Build()
	}
	// #nosec G302 -- published documentation is world readable
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to chmod artifact").WithContext("path", path).Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "atomic rename failed").WithContext("path", path).Build()
	}
	return nil
}
