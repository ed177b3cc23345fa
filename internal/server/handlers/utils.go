package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON marshals v before touching w, so an encoding failure can still be answered
// with an error response. ?pretty=1 or ?pretty=true indents the body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	var (
		body []byte
		err  error
	)
	switch r.URL.Query().Get("pretty") {
	case "1", "true":
		body, err = json.MarshalIndent(v, "", "  ")
	default:
		body, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}
