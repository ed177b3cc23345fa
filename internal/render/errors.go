package render

import "errors"

var (
	// ErrBinaryNotFound indicates the renderer executable was not detected on PATH.
	ErrBinaryNotFound = errors.New("renderer binary not found")
	// ErrExecutionFailed indicates the renderer command returned a non-zero exit status.
	ErrExecutionFailed = errors.New("renderer execution failed")
	// ErrNoOutput indicates the renderer exited cleanly without producing a document.
	ErrNoOutput = errors.New("renderer produced no output")
)
