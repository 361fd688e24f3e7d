// Package otel publishes converter metrics through OpenTelemetry.
//
// [NewOTelExporter] registers one Int64ObservableCounter per converter counter
// and one Int64ObservableGauge per latency bucket. A single callback reads
// [tgsession.Converter.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate converter state.
package otel
