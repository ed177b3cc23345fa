// Package metrics provides the observability hooks for builds, watchers and the preview server.
//
// Components receive a Recorder through their constructors and default to NoopRecorder,
// so no call site needs a nil check:
//
//	builder := build.New(cfg, renderer) // NoopRecorder
//	builder.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// When the preview server runs with metrics enabled, a PrometheusRecorder is created on a
// private registry (see NewRegistry) and exposed through HTTPHandler at /metrics.
package metrics
