package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when --config is not given.
const DefaultFile = "specbuilder.yaml"

// Config represents the complete specbuilder configuration.
type Config struct {
	// Source is the single HTML entry point fed to the renderer.
	Source string `yaml:"source"`
	// Assets are extra files (doublestar globs relative to the source directory)
	// copied verbatim next to the rendered document.
	Assets   []string       `yaml:"assets,omitempty"`
	Output   OutputConfig   `yaml:"output"`
	Renderer RendererConfig `yaml:"renderer"`
	Watch    WatchConfig    `yaml:"watch"`
	Server   ServerConfig   `yaml:"server"`
	Notify   NotifyConfig   `yaml:"notify,omitempty"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// CleanBeforeBuild empties the output directory before every build.
	CleanBeforeBuild bool `yaml:"clean_before_build,omitempty"`
}

// RendererConfig selects and tunes the renderer used by the build task.
type RendererConfig struct {
	Name    RendererName      `yaml:"name"`
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"` // {src} and {out} are substituted
	Timeout string            `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// WatchConfig represents source watching configuration.
type WatchConfig struct {
	Paths        []string `yaml:"paths"`
	Ignore       []string `yaml:"ignore,omitempty"`
	Debounce     string   `yaml:"debounce,omitempty"`
	PollInterval string   `yaml:"poll_interval,omitempty"` // >0 switches to polling
}

// ServerConfig represents the preview server configuration.
type ServerConfig struct {
	Host           string `yaml:"host,omitempty"`
	Port           int    `yaml:"port"`
	LiveReload     *bool  `yaml:"live_reload,omitempty"`
	LiveReloadPort int    `yaml:"livereload_port,omitempty"`
	Metrics        bool   `yaml:"metrics,omitempty"`
}

// NotifyConfig configures optional out-of-process change notifications.
type NotifyConfig struct {
	NATS *NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig configures publishing build and reload events to NATS.
type NATSConfig struct {
	URL               string `yaml:"url"`
	Subject           string `yaml:"subject,omitempty"`
	MaxRetries        int    `yaml:"max_retries,omitempty"`
	RetryBackoff      string `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string `yaml:"retry_initial_delay,omitempty"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// LiveReloadEnabled reports whether the preview server should push reload notifications.
func (s ServerConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// Default returns the configuration reproducing the stock layout:
// spec/index.html rendered by ecmarkup into docs/, served on :8080.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg) // the stock defaults always apply cleanly
	return cfg
}

// Load reads, expands, normalizes, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").WithContext("path", path).Build()
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but falls back to Default (plus environment overrides)
// when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		loadEnvFiles()
		cfg := &Config{}
		return finalize(cfg)
	}
	return Load(path)
}

// Parse decodes YAML configuration content. ${VAR} references are expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	return finalize(cfg)
}

func finalize(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	if err := normalize(cfg); err != nil {
		return nil, err
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
