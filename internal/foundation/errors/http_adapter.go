package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter writes classified errors as JSON responses.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter creates an adapter; a nil logger means slog.Default().
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// ErrorBody is the JSON document written for a failed request.
type ErrorBody struct {
	Message  string         `json:"error"`
	Category string         `json:"category,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
	Retry    bool           `json:"retry,omitempty"`
}

// StatusCodeFor maps err to a status code via its category. Unclassified errors are 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if c, ok := AsClassified(err); ok {
		return c.Category().HTTPStatus()
	}
	return http.StatusInternalServerError
}

// WriteErrorResponse writes the JSON body for err and logs it at its severity.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	status := a.StatusCodeFor(err)
	body, jerr := json.Marshal(a.Body(err))
	if jerr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	level := slog.LevelError
	if c, ok := AsClassified(err); ok {
		level = c.Severity().Level()
	}
	a.logger.LogAttrs(r.Context(), level, "Request failed",
		slog.String("path", r.URL.Path), slog.Int("status", status), slog.Any("error", err))
}

// Body builds the JSON document for err. Classified errors expose their category and
// context; plain errors only their message.
func (a *HTTPErrorAdapter) Body(err error) ErrorBody {
	if err == nil {
		return ErrorBody{}
	}
	c, ok := AsClassified(err)
	if !ok {
		return ErrorBody{Message: err.Error()}
	}
	return ErrorBody{
		Message:  c.Message(),
		Category: string(c.Category()),
		Context:  c.Context(),
		Retry:    c.CanRetry(),
	}
}
