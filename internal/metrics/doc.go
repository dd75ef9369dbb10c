// Package metrics provides the observability hooks for font registration runs.
//
// # Design
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default, so callers never nil-check:
//
//	runner := pipeline.NewRunner(loader, normalizer, sink) // NoopRecorder
//	runner = runner.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The daemon activates the Prometheus implementation and serves it through
// HTTPHandler; one-shot CLI commands keep the noop recorder.
package metrics
