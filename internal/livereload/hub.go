package livereload

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/metrics"
)

const (
	subscriberBuffer  = 8
	heartbeatInterval = 30 * time.Second
	reconnectMillis   = 2000
)

// Hub fans reload tokens out to every page holding an event stream open.
type Hub struct {
	mu        sync.Mutex
	subs      map[*subscriber]struct{}
	token     string
	seq       uint64
	closed    bool
	recorder  metrics.Recorder
	heartbeat time.Duration
}

// subscriber is one open event stream. gone is closed exactly once, by whoever removes
// it first (disconnect, slow consumer or shutdown).
type subscriber struct {
	tokens chan frame
	gone   chan struct{}
	once   sync.Once
}

type frame struct {
	seq   uint64
	token string
}

func (s *subscriber) drop() { s.once.Do(func() { close(s.gone) }) }

// NewHub creates a hub. A nil recorder disables metrics.
func NewHub(rec metrics.Recorder) *Hub {
	return &Hub{
		subs:      make(map[*subscriber]struct{}),
		recorder:  metrics.OrNoop(rec),
		heartbeat: heartbeatInterval,
	}
}

// Clients returns the number of open streams.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// LastToken returns the most recently broadcast token.
func (h *Hub) LastToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *Hub) subscribe() (*subscriber, frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, frame{}, false
	}
	s := &subscriber{tokens: make(chan frame, subscriberBuffer), gone: make(chan struct{})}
	h.subs[s] = struct{}{}
	h.recorder.SetLiveReloadClients(len(h.subs))
	return s, frame{seq: h.seq, token: h.token}, true
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	delete(h.subs, s)
	n := len(h.subs)
	h.mu.Unlock()
	s.drop()
	if ok {
		h.recorder.SetLiveReloadClients(n)
	}
}

// ServeHTTP streams server-sent events. The first event carries the current token, so a
// page can tell later tokens apart from the one it was loaded under.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, current, ok := h.subscribe()
	if !ok {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(s)

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	emit := func(chunk string) bool {
		if _, err := io.WriteString(w, chunk); err != nil {
			slog.Debug("livereload stream closed", logfields.Error(err))
			return false
		}
		if err := rc.Flush(); err != nil {
			slog.Debug("livereload flush failed", logfields.Error(err))
			return false
		}
		return true
	}

	if !emit(fmt.Sprintf(": connected\nretry: %d\n", reconnectMillis) + current.encode()) {
		return
	}

	tick := time.NewTicker(h.heartbeat)
	defer tick.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.gone:
			return
		case <-tick.C:
			if !emit(": ping\n\n") {
				return
			}
		case f := <-s.tokens:
			if !emit(f.encode()) {
				return
			}
		}
	}
}

func (f frame) encode() string {
	data, _ := json.Marshal(struct {
		Token string `json:"token"`
	}{f.token})
	return fmt.Sprintf("id: %d\ndata: %s\n\n", f.seq, data)
}

// Broadcast sends token to every stream. Empty and repeated tokens are ignored. A stream
// whose buffer is full is disconnected; the page reconnects and reloads.
func (h *Hub) Broadcast(token string) {
	h.mu.Lock()
	if h.closed || token == "" || token == h.token {
		h.mu.Unlock()
		return
	}
	h.seq++
	h.token = token
	f := frame{seq: h.seq, token: token}
	targets := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	var dropped int
	for _, s := range targets {
		select {
		case s.tokens <- f:
		default:
			dropped++
			h.unsubscribe(s)
			h.recorder.IncLiveReloadDropped()
		}
	}
	h.recorder.IncLiveReloadBroadcast()
	slog.Debug("livereload broadcast",
		slog.String("token", token), logfields.Clients(len(targets)), slog.Int("dropped", dropped))
}

// Shutdown ends every stream and refuses new streams and broadcasts. It is idempotent.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		s.drop()
	}
	h.recorder.SetLiveReloadClients(0)
}
