// Package preview wires the builder, watchers, live reload hub and HTTP server into the
// long-running watch, serve and start tasks.
package preview
