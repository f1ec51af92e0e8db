// Package otel publishes goJWT engine metrics through an OpenTelemetry meter.
//
// [New] registers an Int64ObservableCounter for each engine counter and an
// Int64ObservableGauge for each latency bucket. One callback reads
// [goJWT.Engine.MetricsSnapshot] per collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
