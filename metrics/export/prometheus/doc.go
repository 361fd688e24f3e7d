// Package prometheus publishes converter metrics for Prometheus.
//
// [PrometheusExporter] renders the text exposition format itself and serves it
// from [PrometheusExporter.Handler]. [Collector] exposes the same series
// through a client_golang registry for programs that already run one.
// Counters are named tgsession_*_total; the single histogram is
// tgsession_convert_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers mount the
//     Handler or register the Collector themselves.
//   - Mutate converter state.
package prometheus
