// Package metrics provides Prometheus instrumentation for the rule
// engine and the evidence pipeline: turn counts, per-rule match counts,
// evaluation latency, governing set sizes, catalog reloads, and
// evidence recording outcomes.
package metrics
