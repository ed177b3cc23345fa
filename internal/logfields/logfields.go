// Package logfields holds the attribute keys shared by every specbuilder log line, so
// that build, watch and server logs can be joined on the same names.
package logfields

import "log/slog"

const (
	KeyTask       = "task"
	KeyBuildID    = "build_id"
	KeySource     = "source"
	KeyOutput     = "output"
	KeyPath       = "path"
	KeyRenderer   = "renderer"
	KeyPort       = "port"
	KeyClients    = "clients"
	KeyBytes      = "bytes"
	KeyHash       = "hash"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRequestID  = "request_id"
	KeyError      = "error"
)

// Pipeline.
func Task(name string) slog.Attr      { return slog.String(KeyTask, name) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Renderer(n string) slog.Attr     { return slog.String(KeyRenderer, n) }
func Hash(h string) slog.Attr         { return slog.String(KeyHash, h) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Server.
func Port(p int) slog.Attr          { return slog.Int(KeyPort, p) }
func Clients(n int) slog.Attr       { return slog.Int(KeyClients, n) }
func Method(m string) slog.Attr     { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr     { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }

// Error logs err under "error". Errors that know how to log themselves (classified
// errors) keep their structure; others are flattened to their message.
func Error(err error) slog.Attr {
	switch v := err.(type) {
	case nil:
		return slog.String(KeyError, "")
	case slog.LogValuer:
		return slog.Any(KeyError, v)
	default:
		return slog.String(KeyError, err.Error())
	}
}
