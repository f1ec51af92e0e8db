// Package prometheus renders goJWT engine metrics in the Prometheus text format.
//
// [New] wraps an engine (or any [MetricsSource]) and [Exporter.Handler] serves the
// rendered text. Counters are named gojwt_*_total. The encode and decode latency
// histograms appear only when the engine records them.
//
// # What this package must NOT do
//
//   - Register anything in a global registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
