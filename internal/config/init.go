package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	liveReload := true
	exampleConfig := Config{
		Source: DefaultSource,
		Assets: []string{"img/**/*", "*.css"},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
		},
		Renderer: RendererConfig{
			Name:    RendererEcmarkup,
			Command: DefaultEcmarkupBinary,
			Args:    []string{"{src}", "{out}"},
			Timeout: DefaultRenderTimeout.String(),
		},
		Watch: WatchConfig{
			Paths:    []string{DefaultWatchPattern},
			Debounce: DefaultDebounce.String(),
		},
		Server: ServerConfig{
			Port:           DefaultPort,
			LiveReload:     &liveReload,
			LiveReloadPort: DefaultLiveReloadPort,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}

	return nil
}
