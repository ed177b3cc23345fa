package livereload

import (
	"bytes"
	"mime"
	"net"
	"net/http"
	"path"

	"golang.org/x/net/html"
)

const maxInjectSize = 512 * 1024

// Inject wraps next so that HTML pages load the live-reload client from port. Non-HTML
// responses, non-200 responses and bodies over 512KB pass through untouched.
func Inject(next http.Handler, port int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || !pageRequest(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		// The body changes, so ranges and validators from the browser no longer apply.
		for _, h := range []string{"Range", "If-Modified-Since", "If-None-Match"} {
			r.Header.Del(h)
		}

		iw := &injectWriter{w: w, status: http.StatusOK, tag: ScriptTag(RequestHost(r), port)}
		next.ServeHTTP(iw, r)
		iw.close()
	})
}

// RequestHost is the host the browser used to reach r, without its port.
func RequestHost(r *http.Request) string {
	if h, _, err := net.SplitHostPort(r.Host); err == nil {
		return h
	}
	return r.Host
}

// pageRequest matches documents and directory indexes.
func pageRequest(p string) bool {
	if p == "" || p[len(p)-1] == '/' {
		return true
	}
	ext := path.Ext(p)
	return ext == ".html" || ext == ".htm"
}

type injectMode int

const (
	undecided injectMode = iota
	buffering
	streaming
)

// injectWriter holds back a 200 HTML body until the handler is done, then writes it with
// the script tag inserted. Anything else is streamed through as soon as it is recognised.
type injectWriter struct {
	w      http.ResponseWriter
	status int
	mode   injectMode
	buf    bytes.Buffer
	tag    string
}

func (iw *injectWriter) Header() http.Header { return iw.w.Header() }

func (iw *injectWriter) WriteHeader(code int) {
	if iw.mode == streaming {
		return
	}
	iw.status = code
}

func (iw *injectWriter) Write(p []byte) (int, error) {
	if iw.mode == undecided {
		iw.mode = streaming
		if iw.status == http.StatusOK && isHTML(iw.Header().Get("Content-Type")) {
			iw.mode = buffering
		}
		if iw.mode == streaming {
			iw.begin()
		}
	}
	if iw.mode == streaming {
		return iw.w.Write(p)
	}
	if iw.buf.Len()+len(p) > maxInjectSize {
		iw.mode = streaming
		iw.begin()
		if _, err := iw.w.Write(iw.buf.Bytes()); err != nil {
			return 0, err
		}
		iw.buf.Reset()
		return iw.w.Write(p)
	}
	return iw.buf.Write(p)
}

// begin sends the held-back status line. Content-Length is dropped since the body seen
// by the browser may differ from what the handler announced.
func (iw *injectWriter) begin() {
	iw.w.Header().Del("Content-Length")
	iw.w.WriteHeader(iw.status)
}

func (iw *injectWriter) close() {
	switch iw.mode {
	case streaming:
	case undecided:
		iw.begin()
	case buffering:
		iw.begin()
		_, _ = iw.w.Write(insertBeforeBodyEnd(iw.buf.Bytes(), []byte(iw.tag)))
	}
}

// isHTML treats a missing content type as HTML; FileServer sniffs only on first write.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}

// insertBeforeBodyEnd places snippet before the last </body> end tag, falling back to
// the last </html> and finally to the end of the document. Tags inside comments, scripts
// or attribute values are not mistaken for the body end.
func insertBeforeBodyEnd(doc, snippet []byte) []byte {
	z := html.NewTokenizer(bytes.NewReader(doc))
	pos, body, root := 0, -1, -1
	for tt := z.Next(); tt != html.ErrorToken; tt = z.Next() {
		if tt == html.EndTagToken {
			switch name, _ := z.TagName(); string(name) {
			case "body":
				body = pos
			case "html":
				root = pos
			}
		}
		pos += len(z.Raw())
	}

	at := len(doc)
	if body >= 0 {
		at = body
	} else if root >= 0 {
		at = root
	}
	return bytes.Join([][]byte{doc[:at], snippet, doc[at:]}, nil)
}
