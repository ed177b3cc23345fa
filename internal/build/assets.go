package build

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
)

// copyAssets copies files matching patterns (relative to srcDir) into outDir, keeping
// their relative layout. The source document itself is never copied over the artifact.
// It returns the number of files copied.
func copyAssets(ctx context.Context, srcDir, outDir string, patterns []string, sourceName string) (int, error) {
	if len(patterns) == 0 {
		return 0, nil
	}
	fsys := os.DirFS(srcDir)
	seen := map[string]struct{}{sourceName: {}}
	copied := 0

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return copied, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid asset pattern").
				WithContext("pattern", pattern).Build()
		}
		for _, rel := range matches {
			if err := ctx.Err(); err != nil {
				return copied, err
			}
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			if err := copyFile(fsys, rel, filepath.Join(outDir, filepath.FromSlash(rel))); err != nil {
				return copied, err
			}
			copied++
		}
	}
	if copied > 0 {
		slog.Debug("Copied static assets", logfields.Output(outDir), slog.Int("assets", copied))
	}
	return copied, nil
}

func copyFile(fsys fs.FS, rel, dst string) error {
	in, err := fsys.Open(rel)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open asset").WithContext("path", rel).Build()
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create asset directory").
			WithContext("path", dst).Build()
	}
	// #nosec G302,G304 -- destination is inside the configured output directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create asset").WithContext("path", dst).Build()
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to copy asset").WithContext("path", dst).Build()
	}
	if err := out.Close(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to close asset").WithContext("path", dst).Build()
	}
	return nil
}
