// Package telemetry groups the observability subsystems: structured
// logging with redaction of sensitive client data, and Prometheus
// metrics for rule evaluation and evidence recording.
package telemetry
