package livereload

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(contentType string, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Header().Set("Content-Length", "1")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = "spec.local:8080"
	h.ServeHTTP(rr, req)
	return rr
}

const tag = `<script async src="//spec.local:35729/livereload.js"></script>`

func TestInjectBeforeBodyEnd(t *testing.T) {
	page := `<html><body><!-- </body> --><script>var s = "</body>";</script><p>x</p></body></html>`
	rr := get(Inject(serve("text/html; charset=utf-8", http.StatusOK, page), 35729), "/index.html")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Length"))
	want := `<html><body><!-- </body> --><script>var s = "</body>";</script><p>x</p>` + tag + `</body></html>`
	assert.Equal(t, want, rr.Body.String())
}

func TestInjectWithoutBodyTag(t *testing.T) {
	rr := get(Inject(serve("text/html", http.StatusOK, "<h1>spec</h1>"), 35729), "/")
	assert.Equal(t, "<h1>spec</h1>"+tag, rr.Body.String())

	rr = get(Inject(serve("text/html", http.StatusOK, "<h1>spec</h1></html>"), 35729), "/")
	assert.Equal(t, "<h1>spec</h1>"+tag+"</html>", rr.Body.String())
}

func TestInjectSkipsNonHTML(t *testing.T) {
	css := "body { color: red }"
	rr := get(Inject(serve("text/css", http.StatusOK, css), 35729), "/index.html")
	assert.Equal(t, css, rr.Body.String())

	rr = get(Inject(serve("text/html", http.StatusOK, "<body></body>"), 35729), "/spec.css")
	assert.Equal(t, "<body></body>", rr.Body.String())
}

func TestInjectSkipsErrors(t *testing.T) {
	rr := get(Inject(serve("text/html", http.StatusNotFound, "<body>missing</body>"), 35729), "/nope.html")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "<body>missing</body>", rr.Body.String())
}

func TestInjectSkipsOversizeBodies(t *testing.T) {
	big := "<body>" + strings.Repeat("x", maxInjectSize) + "</body>"
	rr := get(Inject(serve("text/html", http.StatusOK, big), 35729), "/")
	assert.Equal(t, len(big), rr.Body.Len())
	assert.NotContains(t, rr.Body.String(), "livereload.js")
}

func TestInjectEmptyBody(t *testing.T) {
	rr := get(Inject(serve("text/html", http.StatusNoContent, ""), 35729), "/")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestScriptTagDefaultsToLocalhost(t *testing.T) {
	assert.Equal(t, `<script async src="//localhost:35729/livereload.js"></script>`, ScriptTag("", 35729))
}
