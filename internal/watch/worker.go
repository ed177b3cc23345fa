package watch

import (
	"context"
	"sync/atomic"
)

// Worker runs a rebuild function with single-flight semantics: at most one run is in
// progress, and any number of requests made meanwhile collapse into exactly one
// follow-up run.
type Worker struct {
	fn      func(ctx context.Context)
	pending chan struct{}
	runs    atomic.Int64
}

// NewWorker creates a worker around fn.
func NewWorker(fn func(ctx context.Context)) *Worker {
	return &Worker{fn: fn, pending: make(chan struct{}, 1)}
}

// Request schedules a run without blocking.
func (w *Worker) Request() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

// Runs returns how many times fn has completed.
func (w *Worker) Runs() int64 { return w.runs.Load() }

// Run processes requests until ctx is done. A run in progress is allowed to finish
// (it receives ctx and should honor cancellation).
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.pending:
			if ctx.Err() != nil {
				return
			}
			w.fn(ctx)
			w.runs.Add(1)
		}
	}
}
