package taskrunner

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
)

// Action is the body of a task.
type Action func(ctx context.Context) error

// Task is a named unit of work.
type Task struct {
	// Name is the unique task name used on the command line.
	Name string

	// Description is shown by the tasks listing.
	Description string

	// Deps run in order before Action.
	Deps []string

	// Action may be nil for pure aggregate tasks.
	Action Action
}

// Runner holds the registered tasks.
type Runner struct {
	mu       sync.RWMutex
	tasks    map[string]Task
	recorder metrics.Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder records task durations.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) { r.recorder = metrics.OrNoop(rec) }
}

// New creates an empty Runner.
func New(opts ...Option) *Runner {
	r := &Runner{tasks: make(map[string]Task), recorder: metrics.NoopRecorder{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds a task. Names must be unique and non-empty.
func (r *Runner) Register(t Task) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ferrors.ValidationError("task name is required").Build()
	}
	t.Name = name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[name]; exists {
		return ferrors.ValidationError("task already registered").WithContext("task", name).Build()
	}
	r.tasks[name] = t
	return nil
}

// MustRegister is Register for static task tables; it panics on error.
func (r *Runner) MustRegister(tasks ...Task) {
	for _, t := range tasks {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get returns the task registered under name.
func (r *Runner) Get(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// List returns the registered task names, sorted.
func (r *Runner) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns all tasks sorted by name.
func (r *Runner) Describe() []Task {
	names := r.List()
	out := make([]Task, 0, len(names))
	for _, n := range names {
		t, _ := r.Get(n)
		out = append(out, t)
	}
	return out
}

// Run executes the named task after its dependencies.
func (r *Runner) Run(ctx context.Context, name string) error {
	return r.run(ctx, name)
}

// Series returns an action running the named tasks one after another, stopping at the
// first failure.
func (r *Runner) Series(names ...string) Action {
	return func(ctx context.Context) error {
		for _, n := range names {
			if err := r.run(ctx, n); err != nil {
				return err
			}
		}
		return nil
	}
}

// Parallel returns an action running the named tasks concurrently. The first failure
// cancels the others and is returned.
func (r *Runner) Parallel(names ...string) Action {
	return func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		for _, n := range names {
			g.Go(func() error { return r.run(gctx, n) })
		}
		return g.Wait()
	}
}

type result struct {
	done chan struct{}
	err  error
}

// runState is shared by everything executed under one top-level Run.
type runState struct {
	mu      sync.Mutex
	results map[string]*result
}

type (
	stateKey struct{}
	stackKey struct{}
)

func withState(ctx context.Context) (context.Context, *runState) {
	if s, ok := ctx.Value(stateKey{}).(*runState); ok {
		return ctx, s
	}
	s := &runState{results: make(map[string]*result)}
	return context.WithValue(ctx, stateKey{}, s), s
}

func stackFrom(ctx context.Context) []string {
	s, _ := ctx.Value(stackKey{}).([]string)
	return s
}

func (r *Runner) run(ctx context.Context, name string) error {
	stack := stackFrom(ctx)
	if slices.Contains(stack, name) {
		return ferrors.ValidationError("task dependency cycle").
			WithContext("cycle", strings.Join(append(slices.Clone(stack), name), " -> ")).Build()
	}

	task, ok := r.Get(name)
	if !ok {
		return ferrors.ValidationError("unknown task").
			WithContext("task", name).
			WithContext("available", strings.Join(r.List(), ", ")).Build()
	}

	ctx, state := withState(ctx)
	state.mu.Lock()
	if res, seen := state.results[name]; seen {
		state.mu.Unlock()
		select {
		case <-res.done:
			return res.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	res := &result{done: make(chan struct{})}
	state.results[name] = res
	state.mu.Unlock()
	defer close(res.done)

	ctx = context.WithValue(ctx, stackKey{}, append(slices.Clone(stack), name))
	for _, dep := range task.Deps {
		if err := r.run(ctx, dep); err != nil {
			res.err = err
			return err
		}
	}
	res.err = r.exec(ctx, task)
	return res.err
}

func (r *Runner) exec(ctx context.Context, task Task) error {
	if task.Action == nil {
		return nil
	}
	start := time.Now()
	slog.Info("Starting task", logfields.Task(task.Name))
	err := task.Action(ctx)
	elapsed := time.Since(start)
	r.recorder.ObserveTaskDuration(task.Name, elapsed, err == nil)

	attrs := []any{logfields.Task(task.Name), logfields.DurationMS(float64(elapsed.Milliseconds()))}
	if err != nil {
		slog.Error("Task failed", append(attrs, logfields.Error(err))...)
		return err
	}
	slog.Info("Finished task", attrs...)
	return nil
}
