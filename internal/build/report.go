package build

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
)

// Report captures the outcome of one build run.
type Report struct {
	ID       string
	Source   string
	Output   string
	Renderer string
	Bytes    int
	Hash     string // hex SHA-256 of the rendered artifact
	Assets   int    // static files copied next to the artifact
	Start    time.Time
	End      time.Time
	Outcome  metrics.BuildOutcome
	Err      error
}

// Duration returns the wall time of the build.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Summary returns a single-line human readable description.
func (r *Report) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("build %s %s after %s: %v", r.ID, r.Outcome, r.Duration().Round(time.Millisecond), r.Err)
	}
	return fmt.Sprintf("build %s %s: %s -> %s (%d bytes, %d assets, %s)",
		r.ID, r.Outcome, r.Source, r.Output, r.Bytes, r.Assets, r.Duration().Round(time.Millisecond))
}

// LogValue implements slog.LogValuer.
func (r *Report) LogValue() slog.Value {
	attrs := []slog.Attr{
		logfields.BuildID(r.ID),
		logfields.Source(r.Source),
		logfields.Output(r.Output),
		logfields.Renderer(r.Renderer),
		logfields.DurationMS(float64(r.Duration().Milliseconds())),
		slog.String("outcome", string(r.Outcome)),
	}
	if r.Err == nil {
		attrs = append(attrs, logfields.Bytes(r.Bytes), logfields.Hash(r.Hash), slog.Int("assets", r.Assets))
	}
	return slog.GroupValue(attrs...)
}

func (r *Report) finish(err error, canceled bool) {
	r.End = time.Now()
	r.Err = err
	switch {
	case err == nil:
		r.Outcome = metrics.OutcomeSuccess
	case canceled:
		r.Outcome = metrics.OutcomeCanceled
	default:
		r.Outcome = metrics.OutcomeFailed
	}
}
