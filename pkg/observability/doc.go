// Package observability provides structured logging and Prometheus metrics
// for the hot-swap engine.
//
// The Logger is a thin slog wrapper emitting JSON with field chaining;
// Metrics registers counters and gauges for dependency tracking, cascade
// reloads, migrations, and rollbacks. Embedding applications expose the
// Prometheus registry however they see fit; this package never opens a
// listener.
package observability
