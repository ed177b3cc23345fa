package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns a command's error into a log line, a message on stderr and an
// exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates an adapter writing user-facing messages to stderr.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr}
}

// ExitCodeFor returns 0 for nil, the category's exit code for classified errors and 1
// otherwise.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if c, ok := AsClassified(err); ok {
		return c.Category().ExitCode()
	}
	return 1
}

// FormatError renders the one-line message shown to the user.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	switch {
	case !ok || a.verbose:
		return "Error: " + err.Error()
	case c.Category() == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	case c.RetryStrategy() == RetryUserAction && c.Cause() != nil:
		return fmt.Sprintf("Error: %s: %v (action required)", c.Message(), c.Cause())
	case c.Cause() != nil:
		return fmt.Sprintf("Error: %s: %v", c.Message(), c.Cause())
	default:
		return "Error: " + c.Message()
	}
}

// HandleError logs err, prints the user-facing message and returns the exit code for
// os.Exit.
func (a *CLIErrorAdapter) HandleError(err error) int {
	if err == nil {
		return 0
	}
	a.log(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// log records fatal errors always and everything else only in verbose mode; the
// failing task has usually logged the error already.
func (a *CLIErrorAdapter) log(err error) {
	c, ok := AsClassified(err)
	if !ok {
		if a.verbose {
			a.logger.Error("Command failed", slog.String("error", err.Error()))
		}
		return
	}
	if !a.verbose && c.Severity() != SeverityFatal {
		return
	}
	a.logger.LogAttrs(context.Background(), c.Severity().Level(), "Command failed", slog.Any("error", c))
}
