// Package internaldefs holds the metric names, help strings and bucket bounds
// shared by the Prometheus and OpenTelemetry exporters, so both publish the
// same series.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
