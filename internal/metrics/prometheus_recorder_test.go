package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.ObserveTaskDuration("build", 20*time.Millisecond, true)
	pr.IncWatchEvent("source")
	pr.IncRebuildTrigger()
	pr.SetLiveReloadClients(2)
	pr.IncLiveReloadBroadcast()
	pr.IncLiveReloadDropped()
	pr.IncHTTPRequest(200)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["specbuilder_builds_total"])
	assert.True(t, names["specbuilder_livereload_clients"])
	assert.True(t, names["specbuilder_http_requests_total"])
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncBuildOutcome(OutcomeFailed)
	pr.SetLiveReloadClients(1)

	assert.IsType(t, NoopRecorder{}, OrNoop(nil))
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome(OutcomeSuccess)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `specbuilder_builds_total{outcome="success"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
	assert.Contains(t, string(body), "specbuilder_build_info{")
}
