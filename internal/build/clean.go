package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
)

// Clean removes every entry inside the output directory. The directory itself survives
// (and is created when missing).
func (b *Builder) Clean(ctx context.Context) error {
	if err := b.checkCleanTarget(); err != nil {
		return err
	}
	if err := os.MkdirAll(b.outputDir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", b.outputDir).Build()
	}

	entries, err := os.ReadDir(b.outputDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to list output directory").
			WithContext("path", b.outputDir).Build()
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(b.outputDir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove output entry").
				WithContext("path", p).Build()
		}
	}
	slog.Info("Cleaned output directory", logfields.Output(b.outputDir), slog.Int("removed", len(entries)))
	return nil
}

// checkCleanTarget refuses to clean the filesystem root, any directory holding the
// working directory and any directory holding the source document.
func (b *Builder) checkCleanTarget() error {
	out, err := filepath.Abs(b.outputDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot resolve output directory").
			WithContext("path", b.outputDir).Build()
	}
	refuse := func(reason string) error {
		return ferrors.WrapError(ErrUnsafeCleanTarget, ferrors.CategoryValidation, "refusing to clean "+reason).
			Fatal().WithContext("path", out).Build()
	}

	if out == filepath.VolumeName(out)+string(filepath.Separator) {
		return refuse("the filesystem root")
	}
	if wd, err := os.Getwd(); err == nil && (samePath(out, wd) || isWithin(resolve(wd), resolve(out))) {
		return refuse("the working directory or one of its parents")
	}
	if src, err := filepath.Abs(b.source); err == nil && isWithin(src, out) {
		return refuse("a directory containing the source document")
	}
	return nil
}

func resolve(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return filepath.Clean(p)
}

func samePath(a, b string) bool {
	return resolve(a) == resolve(b)
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
