package httpserver

import (
	"net/http"

	"git.home.luguber.info/inful/specbuilder/internal/metrics"
)

// BuildStatus reports the latest build error (nil after a success) and whether any
// build has succeeded. The server shows the error page only while nothing good exists.
type BuildStatus interface {
	BuildState() (succeeded bool, lastErr error)
}

// LiveReloadHub serves the event stream and pushes reload tokens to connected pages.
type LiveReloadHub interface {
	http.Handler
	Broadcast(token string)
	Shutdown()
}

// Options carries the collaborators owned by the preview session. All are optional.
type Options struct {
	LiveReloadHub  LiveReloadHub // ignored unless live reload is enabled
	BuildStatus    BuildStatus
	Recorder       metrics.Recorder
	MetricsHandler http.Handler // mounted at /metrics
}
