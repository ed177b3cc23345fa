package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/preview"
)

// Global is bound into every command's Run. Context is canceled on SIGINT or SIGTERM.
type Global struct {
	Context context.Context
}

// CLI is the kong grammar. Running without a command runs build.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"specbuilder.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json); defaults to logging.format from config" placeholder:"FORMAT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Render the source document into the output directory (default)"`
	Clean CleanCmd `cmd:"" help:"Delete the contents of the output directory"`
	Watch WatchCmd `cmd:"" help:"Rebuild whenever a source file changes"`
	Start StartCmd `cmd:"" help:"Build, watch and serve the output with live reload"`
	Run   RunCmd   `cmd:"" help:"Run a task by name"`
	Tasks TasksCmd `cmd:"" help:"List available tasks"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`

	// logOut is replaced in tests.
	logOut io.Writer
}

// AfterApply installs a logger from the flags alone, so that config loading can log.
// loadConfig replaces it once the file's logging section is known.
func (c *CLI) AfterApply() error { //nolint:unparam // kong hook signature
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	c.setLogger(level, config.NormalizeLogFormat(c.LogFormat))
	return nil
}

func (c *CLI) setLogger(level slog.Level, format config.LogFormat) {
	out := c.logOut
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the configuration (falling back to built-in defaults when the file is
// missing) and re-applies logging settings from it. Flags take precedence.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	c.setLogger(level, format)
	return cfg, nil
}

// runTask loads the configuration, optionally adjusts it, and runs the named task.
func runTask(g *Global, root *CLI, task string, adjust func(*config.Config) error) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if adjust != nil {
		if err := adjust(cfg); err != nil {
			return err
		}
	}
	sess, err := preview.NewSession(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			slog.Warn("Failed to close notifiers", logfields.Error(cerr))
		}
	}()
	return sess.Runner().Run(g.ctx(), task)
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}
