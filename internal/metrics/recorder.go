package metrics

import "time"

// BuildOutcome enumerates build result labels.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds, tasks, watchers and live reload.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	ObserveTaskDuration(task string, d time.Duration, success bool)
	IncWatchEvent(watcher string)
	IncRebuildTrigger()
	SetLiveReloadClients(n int)
	IncLiveReloadBroadcast()
	IncLiveReloadDropped()
	IncHTTPRequest(status int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)               {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)                     {}
func (NoopRecorder) ObserveTaskDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncWatchEvent(string)                             {}
func (NoopRecorder) IncRebuildTrigger()                               {}
func (NoopRecorder) SetLiveReloadClients(int)                         {}
func (NoopRecorder) IncLiveReloadBroadcast()                          {}
func (NoopRecorder) IncLiveReloadDropped()                            {}
func (NoopRecorder) IncHTTPRequest(int)                               {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
