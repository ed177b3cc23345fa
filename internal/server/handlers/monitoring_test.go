package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/specbuilder/internal/server/responses"
)

type fixedStatus struct{ err error }

func (f fixedStatus) BuildState() (bool, error) { return false, f.err }

func TestHealthCheck(t *testing.T) {
	h := NewMonitoringHandlers(filepath.Join(t.TempDir(), "index.html"), nil)
	rr := httptest.NewRecorder()
	h.HandleHealthCheck(rr, httptest.NewRequest(http.MethodGet, "/healthz?pretty=1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "\n  \"status\""), "pretty printed")
	var resp responses.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestReadiness(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "index.html")
	h := NewMonitoringHandlers(artifact, fixedStatus{err: errors.New("ecmarkup exited 1")})

	rr := httptest.NewRecorder()
	h.HandleReadiness(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var resp responses.ReadinessResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, "ecmarkup exited 1", resp.LastBuildError)

	require.NoError(t, os.WriteFile(artifact, []byte("<html></html>"), 0o600))
	rr = httptest.NewRecorder()
	h.HandleReadiness(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}
