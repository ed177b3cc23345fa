package config

import (
	"fmt"
	"time"
)

// Stock values: spec/index.html rendered into docs/ and served on :8080.
const (
	DefaultSource         = "spec/index.html"
	DefaultOutputDir      = "docs"
	DefaultWatchPattern   = "spec/**/*"
	DefaultPort           = 8080
	DefaultLiveReloadPort = 35729
	DefaultDebounce       = 300 * time.Millisecond
	DefaultRenderTimeout  = 2 * time.Minute
	DefaultNATSSubject    = "specbuilder.events"
	DefaultEcmarkupBinary = "ecmarkup"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SourceDefaultApplier handles source and output defaults.
type SourceDefaultApplier struct{}

func (SourceDefaultApplier) Domain() string { return "source" }

func (SourceDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	return nil
}

// RendererDefaultApplier handles renderer defaults.
type RendererDefaultApplier struct{}

func (RendererDefaultApplier) Domain() string { return "renderer" }

func (RendererDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Renderer.Name == "" {
		cfg.Renderer.Name = RendererEcmarkup
	}
	if cfg.Renderer.Name == RendererEcmarkup {
		if cfg.Renderer.Command == "" {
			cfg.Renderer.Command = DefaultEcmarkupBinary
		}
		if len(cfg.Renderer.Args) == 0 {
			cfg.Renderer.Args = []string{"{src}", "{out}"}
		}
	}
	if cfg.Renderer.Timeout == "" {
		cfg.Renderer.Timeout = DefaultRenderTimeout.String()
	}
	return nil
}

// WatchDefaultApplier handles watch defaults.
type WatchDefaultApplier struct{}

func (WatchDefaultApplier) Domain() string { return "watch" }

func (WatchDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Watch.Paths) == 0 {
		cfg.Watch.Paths = []string{DefaultWatchPattern}
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce.String()
	}
	return nil
}

// ServerDefaultApplier handles preview server defaults.
type ServerDefaultApplier struct{}

func (ServerDefaultApplier) Domain() string { return "server" }

func (ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.LiveReloadPort == 0 {
		cfg.Server.LiveReloadPort = DefaultLiveReloadPort
	}
	return nil
}

// NotifyDefaultApplier handles NATS notification defaults.
type NotifyDefaultApplier struct{}

func (NotifyDefaultApplier) Domain() string { return "notify" }

func (NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	n := cfg.Notify.NATS
	if n == nil {
		return nil
	}
	if n.Subject == "" {
		n.Subject = DefaultNATSSubject
	}
	if n.MaxRetries == 0 {
		n.MaxRetries = 3
	}
	return nil
}

// LoggingDefaultApplier handles logging defaults.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		SourceDefaultApplier{},
		RendererDefaultApplier{},
		WatchDefaultApplier{},
		ServerDefaultApplier{},
		NotifyDefaultApplier{},
		LoggingDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("%s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}
