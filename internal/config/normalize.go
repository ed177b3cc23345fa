package config

import (
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

// normalize canonicalizes enumerations and paths before defaults are applied.
func normalize(cfg *Config) error {
	name, err := NormalizeRendererName(string(cfg.Renderer.Name))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid renderer.name").Fatal().Build()
	}
	cfg.Renderer.Name = name

	if cfg.Logging.Level != "" {
		cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	}
	if cfg.Logging.Format != "" {
		cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	}

	if cfg.Source != "" {
		cfg.Source = filepath.Clean(cfg.Source)
	}
	if cfg.Output.Directory != "" {
		cfg.Output.Directory = filepath.Clean(cfg.Output.Directory)
	}
	for i, p := range cfg.Watch.Paths {
		cfg.Watch.Paths[i] = filepath.ToSlash(strings.TrimSpace(p))
	}
	return nil
}
