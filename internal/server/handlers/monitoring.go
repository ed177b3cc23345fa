package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/server/responses"
	"git.home.luguber.info/inful/specbuilder/internal/version"
)

// BuildStatus reports the latest build error, nil after a success.
type BuildStatus interface {
	BuildState() (succeeded bool, lastErr error)
}

// MonitoringHandlers contains health and readiness handlers.
type MonitoringHandlers struct {
	artifact     string
	status       BuildStatus
	startTime    time.Time
	errorAdapter *ferrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates handlers reporting on artifact. status may be nil.
func NewMonitoringHandlers(artifact string, status BuildStatus) *MonitoringHandlers {
	return &MonitoringHandlers{
		artifact:     artifact,
		status:       status,
		startTime:    time.Now(),
		errorAdapter: ferrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck reports liveness.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Get(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	if err := writeJSON(w, r, http.StatusOK, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			ferrors.WrapError(err, ferrors.CategoryInternal, "failed to write health response").Build())
	}
}

// HandleReadiness reports 200 once the artifact exists and 503 before.
func (h *MonitoringHandlers) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := &responses.ReadinessResponse{
		Artifact:  h.artifact,
		Timestamp: time.Now().UTC(),
	}
	if st, err := os.Stat(h.artifact); err == nil && !st.IsDir() {
		resp.Ready = true
	}
	if h.status != nil {
		if _, buildErr := h.status.BuildState(); buildErr != nil {
			resp.LastBuildError = buildErr.Error()
		}
	}

	code := http.StatusOK
	resp.Status = "ready"
	if !resp.Ready {
		code = http.StatusServiceUnavailable
		resp.Status = "not_ready"
	}
	if err := writeJSON(w, r, code, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			ferrors.WrapError(err, ferrors.CategoryInternal, "failed to write readiness response").Build())
	}
}
