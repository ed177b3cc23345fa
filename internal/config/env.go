package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables overriding file values.
const (
	EnvSource   = "SPECBUILDER_SOURCE"
	EnvOutput   = "SPECBUILDER_OUTPUT"
	EnvPort     = "SPECBUILDER_PORT"
	EnvRenderer = "SPECBUILDER_RENDERER"
	EnvLogLevel = "SPECBUILDER_LOG_LEVEL"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local when present. godotenv.Load never overrides
// variables already set in the process environment.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", name, err)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvSource); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output.Directory = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			fmt.Fprintf(os.Stderr, "Note: ignoring %s=%q: not a number\n", EnvPort, v)
		}
	}
	if v := os.Getenv(EnvRenderer); v != "" {
		cfg.Renderer.Name = RendererName(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
}
