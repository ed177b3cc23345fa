package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
)

const (
	placeholderSource = "{src}"
	placeholderOutput = "{out}"
)

// CommandRenderer invokes an external program. Arguments may reference the source path
// with {src} and an output file with {out}. Without {out} the program's stdout is the
// artifact; without {src} the source bytes are piped to stdin.
type CommandRenderer struct {
	name    string
	command string
	args    []string
	timeout time.Duration
	env     map[string]string
}

// NewCommandRenderer creates a renderer running command with args. A zero timeout disables
// the per-render deadline.
func NewCommandRenderer(name, command string, args []string, timeout time.Duration, env map[string]string) *CommandRenderer {
	if name == "" {
		name = filepath.Base(command)
	}
	return &CommandRenderer{
		name:    name,
		command: command,
		args:    slices.Clone(args),
		timeout: timeout,
		env:     env,
	}
}

func (c *CommandRenderer) Name() string { return c.name }

func (c *CommandRenderer) Render(ctx context.Context, in Input) ([]byte, error) {
	bin, err := exec.LookPath(c.command)
	if err != nil {
		return nil, ferrors.WrapError(fmt.Errorf("%w: %w", ErrBinaryNotFound, err), ferrors.CategoryRender,
			"renderer binary not found on PATH (install it or set renderer.command)").
			UserAction().
			WithContext("command", c.command).
			Build()
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tmpOut := ""
	if slices.ContainsFunc(c.args, func(a string) bool { return strings.Contains(a, placeholderOutput) }) {
		dir, err := os.MkdirTemp("", "specbuilder-render-")
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create render scratch dir").Build()
		}
		defer func() { _ = os.RemoveAll(dir) }()
		name := filepath.Base(in.OutputPath)
		if name == "." || name == string(filepath.Separator) || name == "" {
			name = filepath.Base(in.SourcePath)
		}
		tmpOut = filepath.Join(dir, name)
	}

	args, usesSource := c.expandArgs(in.SourcePath, tmpOut)

	// #nosec G204 -- command and args come from the operator's configuration
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = c.environ()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if !usesSource {
		cmd.Stdin = bytes.NewReader(in.Source)
	}

	slog.Debug("Invoking renderer", logfields.Renderer(c.name), slog.String("command", bin), slog.Any("args", args))
	start := time.Now()
	runErr := cmd.Run()

	outStr, errStr := stdout.String(), stderr.String()
	if errStr != "" {
		slog.Warn("Renderer stderr", logfields.Renderer(c.name), slog.String("error_output", errStr))
	}

	if runErr != nil {
		cause := fmt.Errorf("%w: %w", ErrExecutionFailed, runErr)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			cause = fmt.Errorf("%w: timed out after %s", ErrExecutionFailed, c.timeout)
		} else if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		output := strings.TrimSpace(errStr)
		if output == "" && tmpOut != "" {
			output = strings.TrimSpace(outStr)
		}
		if output != "" {
			cause = fmt.Errorf("%w: %s", cause, output)
		}
		return nil, ferrors.WrapError(cause, ferrors.CategoryRender, "renderer failed").
			WithContext("renderer", c.name).
			WithContext("source", in.SourcePath).
			Build()
	}

	slog.Debug("Renderer finished", logfields.Renderer(c.name), logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	if tmpOut == "" {
		if stdout.Len() == 0 {
			return nil, ferrors.WrapError(ErrNoOutput, ferrors.CategoryRender, "renderer wrote nothing to stdout").
				WithContext("renderer", c.name).Build()
		}
		return stdout.Bytes(), nil
	}

	data, err := os.ReadFile(tmpOut)
	if err != nil {
		return nil, ferrors.WrapError(fmt.Errorf("%w: %w", ErrNoOutput, err), ferrors.CategoryRender,
			"renderer did not write its output file").
			WithContext("renderer", c.name).Build()
	}
	return data, nil
}

func (c *CommandRenderer) expandArgs(src, out string) ([]string, bool) {
	args := make([]string, len(c.args))
	usesSource := false
	for i, a := range c.args {
		if strings.Contains(a, placeholderSource) {
			usesSource = true
			a = strings.ReplaceAll(a, placeholderSource, src)
		}
		if out != "" {
			a = strings.ReplaceAll(a, placeholderOutput, out)
		}
		args[i] = a
	}
	return args, usesSource
}

func (c *CommandRenderer) environ() []string {
	env := os.Environ()
	for k, v := range c.env {
		env = append(env, k+"="+v)
	}
	return env
}
