// Package metrics exposes the enforcer's Prometheus metrics.
//
// A Collector groups the policy lifecycle metrics (refresh outcomes, source
// fetches, parse diagnostics, active configuration size) and the
// enforcement metrics (evaluations, emitted actions, redirects, override
// grants, tracked tabs). Every recording method is a no-op on a nil
// collector or when metrics are disabled.
package metrics
