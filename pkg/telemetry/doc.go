// Package telemetry groups the enforcer's observability packages.
//
//   - logging: slog logger carrying tab, refresh and trace identifiers
//   - metrics: Prometheus collector for refreshes, evaluations and overrides
//   - tracing: OpenTelemetry provider and bridge propagation
//   - health: readiness checks reported by /readyz
package telemetry
