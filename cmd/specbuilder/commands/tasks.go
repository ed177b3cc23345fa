package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	"git.home.luguber.info/inful/specbuilder/internal/preview"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Clean bool `help:"Empty the output directory before rendering"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	task := preview.TaskBuild
	if b.Clean {
		return runTask(g, root, task, func(cfg *config.Config) error {
			cfg.Output.CleanBeforeBuild = true
			return nil
		})
	}
	return runTask(g, root, task, nil)
}

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, preview.TaskClean, nil)
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Poll string `name:"poll" help:"Poll for changes at this interval instead of using filesystem notifications (e.g. 1s)" placeholder:"INTERVAL"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, preview.TaskWatch, func(cfg *config.Config) error {
		if w.Poll != "" {
			cfg.Watch.PollInterval = w.Poll
		}
		return config.Validate(cfg)
	})
}

// RunCmd implements the 'run' command.
type RunCmd struct {
	Task string `arg:"" help:"Task name (see 'tasks')"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	return runTask(g, root, strings.TrimSpace(r.Task), nil)
}

// TasksCmd implements the 'tasks' command.
type TasksCmd struct {
	out io.Writer
}

func (t *TasksCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	sess, err := preview.NewSession(cfg)
	if err != nil {
		return err
	}
	out := t.out
	if out == nil {
		out = os.Stdout
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, task := range sess.Runner().Describe() {
		desc := task.Description
		if len(task.Deps) > 0 {
			desc += " (runs " + strings.Join(task.Deps, ", ") + ")"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", task.Name, desc)
	}
	return tw.Flush()
}
