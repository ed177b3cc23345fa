package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/retry"
)

// Validate checks a defaulted configuration for internal consistency.
func Validate(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateRenderer(); err != nil {
		return err
	}
	if err := cv.validateWatch(); err != nil {
		return err
	}
	if err := cv.validateServer(); err != nil {
		return err
	}
	return cv.validateNotify()
}

func (cv *configurationValidator) validatePaths() error {
	cfg := cv.config
	if cfg.Source == "" {
		return ferrors.ValidationError("source cannot be empty").Build()
	}
	out := filepath.Clean(cfg.Output.Directory)
	if cfg.Output.Directory == "" || out == "." || out == string(filepath.Separator) ||
		out == ".." || strings.HasPrefix(out, ".."+string(filepath.Separator)) {
		return ferrors.ValidationError("output.directory must name a dedicated directory").
			WithContext("output", cfg.Output.Directory).Build()
	}
	for _, pattern := range cfg.Assets {
		if !doublestar.ValidatePattern(pattern) {
			return ferrors.ValidationError("invalid asset pattern").WithContext("pattern", pattern).Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateRenderer() error {
	r := cv.config.Renderer
	switch r.Name {
	case RendererCommand, RendererEcmarkup:
		if r.Command == "" {
			return ferrors.ValidationError("renderer.command is required").
				WithContext("renderer", string(r.Name)).Build()
		}
	case RendererMarkdown, RendererCopy:
	default:
		return ferrors.ConfigError("unknown renderer").WithContext("renderer", string(r.Name)).Build()
	}
	return validateDuration("renderer.timeout", r.Timeout)
}

func (cv *configurationValidator) validateWatch() error {
	w := cv.config.Watch
	for _, pattern := range append(append([]string{}, w.Paths...), w.Ignore...) {
		if !doublestar.ValidatePattern(pattern) {
			return ferrors.ValidationError("invalid watch pattern").WithContext("pattern", pattern).Build()
		}
	}
	if err := validateDuration("watch.debounce", w.Debounce); err != nil {
		return err
	}
	return validateDuration("watch.poll_interval", w.PollInterval)
}

func (cv *configurationValidator) validateServer() error {
	s := cv.config.Server
	if !validPort(s.Port) {
		return ferrors.ValidationError("server.port must be between 1 and 65535").WithContext("port", s.Port).Build()
	}
	if !s.LiveReloadEnabled() {
		return nil
	}
	if !validPort(s.LiveReloadPort) {
		return ferrors.ValidationError("server.livereload_port must be between 1 and 65535").
			WithContext("port", s.LiveReloadPort).Build()
	}
	if s.LiveReloadPort == s.Port {
		return ferrors.ValidationError("server.livereload_port must differ from server.port").
			WithContext("port", s.Port).Build()
	}
	return nil
}

func (cv *configurationValidator) validateNotify() error {
	n := cv.config.Notify.NATS
	if n == nil {
		return nil
	}
	if n.URL == "" {
		return ferrors.ValidationError("notify.nats.url is required when notify.nats is set").Build()
	}
	if n.MaxRetries < 0 {
		return ferrors.ValidationError("notify.nats.max_retries cannot be negative").Build()
	}
	if err := validateDuration("notify.nats.retry_initial_delay", n.RetryInitialDelay); err != nil {
		return err
	}
	if _, err := retry.ParseBackoff(n.RetryBackoff); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid notify.nats.retry_backoff").
			Fatal().WithContext("value", n.RetryBackoff).Build()
	}
	return nil
}

func validPort(p int) bool { return p > 0 && p <= 65535 }

func validateDuration(field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid duration").
			WithContext("field", field).Build()
	}
	if d < 0 {
		return ferrors.ValidationError("duration cannot be negative").WithContext("field", field).Build()
	}
	return nil
}

// parseDurationOr returns fallback for empty or invalid input. Validate has already
// rejected malformed values for loaded configurations.
func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// DebounceDuration returns the watch debounce window.
func (w WatchConfig) DebounceDuration() time.Duration {
	return parseDurationOr(w.Debounce, DefaultDebounce)
}

// PollIntervalDuration returns the polling interval; zero disables polling.
func (w WatchConfig) PollIntervalDuration() time.Duration {
	return parseDurationOr(w.PollInterval, 0)
}

// TimeoutDuration returns the per-render timeout.
func (r RendererConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(r.Timeout, DefaultRenderTimeout)
}

// InitialDelay returns the first NATS connect retry delay.
func (n NATSConfig) InitialDelay() time.Duration {
	return parseDurationOr(n.RetryInitialDelay, time.Second)
}
