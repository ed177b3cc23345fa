package livereload

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/specbuilder/internal/logfields"
)

// Script returns the browser client connecting to the hub on port of the page's host.
// The first event carries the token the page was rendered under; any later, different
// token reloads the page.
func Script(port int) string {
	return fmt.Sprintf(`(() => {
  if (window.__SPECBUILDER_LR__) return;
  window.__SPECBUILDER_LR__ = true;
  const url = location.protocol + '//' + (location.hostname || 'localhost') + ':%d/livereload';
  let current = null;
  function connect() {
    const es = new EventSource(url);
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.token; return; }
        if (p.token && p.token !== current) {
          console.log('[specbuilder] change detected, reloading');
          location.reload();
        }
      } catch (_) {}
    };
    es.onerror = () => {
      console.warn('[specbuilder] livereload error - retrying');
      es.close();
      setTimeout(connect, 2000);
    };
  }
  connect();
})();
`, port)
}

// ScriptHandler serves Script(port) as JavaScript.
func ScriptHandler(port int) http.Handler {
	script := []byte(Script(port))
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(script); err != nil {
			slog.Error("failed to write livereload script", logfields.Error(err))
		}
	})
}

// ScriptTag returns the <script> element loading the client from host:port. An empty
// host means localhost.
func ScriptTag(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf(`<script async src="//%s/livereload.js"></script>`, net.JoinHostPort(host, strconv.Itoa(port)))
}
