// Package tracing installs the OpenTelemetry SDK when tracing is enabled and
// carries W3C trace context across the host bridge and policy fetches.
//
// The manager and enforcer always create spans through the global tracer.
// Without New (or with tracing disabled) those spans are no-ops.
//
//	provider, err := tracing.New(ctx, cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(context.Background())
//
// Spans are exported over OTLP/gRPC in batches. The sampler is parent-based
// so a host that sends a sampled traceparent header gets its navigation
// traced end to end.
package tracing
