package livereload

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/specbuilder/internal/metrics"
)

type lrRecorder struct {
	metrics.NoopRecorder
	clients    chan int
	broadcasts int
}

func (r *lrRecorder) SetLiveReloadClients(n int) {
	select {
	case r.clients <- n:
	default:
	}
}
func (r *lrRecorder) IncLiveReloadBroadcast() { r.broadcasts++ }

// connect opens an SSE stream and returns a reader positioned after the initial event.
func connect(ctx context.Context, t *testing.T, url string) (*bufio.Reader, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	br := bufio.NewReader(resp.Body)
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)
	return br, readData(t, br)
}

func readData(t *testing.T, br *bufio.Reader) string {
	t.Helper()
	for {
		line, err := br.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestHubBroadcastsToClients(t *testing.T) {
	rec := &lrRecorder{clients: make(chan int, 16)}
	hub := NewHub(rec)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	br1, first := connect(ctx, t, srv.URL)
	assert.Equal(t, `{"token":""}`, first)
	br2, _ := connect(ctx, t, srv.URL)
	assert.Equal(t, 2, hub.Clients())

	hub.Broadcast("1700000000")
	assert.Equal(t, `{"token":"1700000000"}`, readData(t, br1))
	assert.Equal(t, `{"token":"1700000000"}`, readData(t, br2))
	assert.Equal(t, "1700000000", hub.LastToken())

	// Duplicates and empty tokens are ignored.
	hub.Broadcast("1700000000")
	hub.Broadcast("")
	hub.Broadcast("1700000001")
	assert.Equal(t, `{"token":"1700000001"}`, readData(t, br1))
	assert.Equal(t, 2, rec.broadcasts)
}

func TestHubSendsLastTokenOnConnect(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast("abc")
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown()

	_, first := connect(context.Background(), t, srv.URL)
	assert.Equal(t, `{"token":"abc"}`, first)
}

func TestHubRemovesDisconnectedClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, _ = connect(ctx, t, srv.URL)
	require.Equal(t, 1, hub.Clients())
	cancel()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub(nil)
	s, _, ok := hub.subscribe()
	require.True(t, ok)

	for i := 0; i <= subscriberBuffer; i++ {
		hub.Broadcast(fmt.Sprintf("t%d", i))
	}

	assert.Equal(t, 0, hub.Clients())
	select {
	case <-s.gone:
	default:
		t.Fatal("dropped subscriber not closed")
	}
}

func TestHubFramesCarrySequence(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast("a")
	hub.Broadcast("b")
	_, current, ok := hub.subscribe()
	require.True(t, ok)
	assert.Equal(t, "id: 2\ndata: {\"token\":\"b\"}\n\n", current.encode())
}

func TestHubHeartbeat(t *testing.T) {
	hub := NewHub(nil)
	hub.heartbeat = 20 * time.Millisecond
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown()

	br, _ := connect(context.Background(), t, srv.URL)
	for {
		line, err := br.ReadString('\n')
		require.NoError(t, err)
		if line == ": ping\n" {
			break
		}
	}
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Shutdown()

	br, _ := connect(context.Background(), t, srv.URL)
	hub.Shutdown()
	_, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, 0, hub.Clients())

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	hub.Broadcast("late")
	assert.Empty(t, hub.LastToken())
	hub.Shutdown()
}

func TestScriptHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	ScriptHandler(35729).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/livereload.js", nil))
	assert.Equal(t, "application/javascript; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, ":35729/livereload")
	assert.Contains(t, body, "setTimeout(connect, 2000)")
	assert.Contains(t, body, "location.reload()")
}
