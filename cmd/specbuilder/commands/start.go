package commands

import (
	"git.home.luguber.info/inful/specbuilder/internal/config"
	"git.home.luguber.info/inful/specbuilder/internal/preview"
)

// StartCmd implements the 'start' command: build, then watch and serve in parallel.
type StartCmd struct {
	Host           string `name:"host" help:"Interface to bind (default from config, all interfaces when empty)"`
	Port           int    `name:"port" help:"Docs server port (default from config, 8080)"`
	LiveReloadPort int    `name:"livereload-port" help:"LiveReload server port (default from config, 35729)"`
	NoLiveReload   bool   `name:"no-live-reload" help:"Disable LiveReload SSE and script injection."`
	Metrics        bool   `name:"metrics" help:"Expose Prometheus metrics at /metrics."`
}

func (s *StartCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, preview.TaskStart, s.apply)
}

func (s *StartCmd) apply(cfg *config.Config) error {
	if s.Host != "" {
		cfg.Server.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Server.Port = s.Port
	}
	if s.LiveReloadPort != 0 {
		cfg.Server.LiveReloadPort = s.LiveReloadPort
	}
	if s.NoLiveReload {
		off := false
		cfg.Server.LiveReload = &off
	}
	if s.Metrics {
		cfg.Server.Metrics = true
	}
	return config.Validate(cfg)
}
