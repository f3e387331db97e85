package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/warden/pkg/config"
)

const (
	parentTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	traceparent   = "00-" + parentTraceID + "-00f067aa0ba902b7-01"
)

// installRecorder replaces the global provider and propagator for one test.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})
	return recorder
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.25, false},
		{SamplerRatio, 1.5, true},
		{SamplerRatio, -0.1, true},
		{"sometimes", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("createSampler() returned nil sampler")
			}
		})
	}
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	if p.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestNew_Enabled(t *testing.T) {
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	cfg := config.TracingConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:4317",
		Insecure:    true,
		Sampler:     SamplerNever,
		ServiceName: "warden-test",
		Timeout:     time.Second,
	}
	p, err := New(context.Background(), cfg, "0.0.0-test")
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	if !p.Enabled() {
		t.Error("Enabled() = false, want true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestNew_InvalidSampler(t *testing.T) {
	cfg := config.TracingConfig{Enabled: true, Endpoint: "127.0.0.1:4317", Sampler: "sometimes"}
	if _, err := New(context.Background(), cfg, "test"); err == nil {
		t.Error("New() error = nil, want error")
	}
}

func TestMiddleware_ContinuesTrace(t *testing.T) {
	recorder := installRecorder(t)

	var seen trace.SpanContext
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = trace.SpanContextFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/navigation", nil)
	req.Header.Set("traceparent", traceparent)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got := seen.TraceID().String(); got != parentTraceID {
		t.Errorf("handler trace ID = %s, want %s", got, parentTraceID)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if spans[0].Name() != "bridge POST" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Parent().SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent span = %s", spans[0].Parent().SpanID())
	}
}

func TestInjectHeaders(t *testing.T) {
	installRecorder(t)

	ctx, span := otel.Tracer("test").Start(context.Background(), "fetch")
	defer span.End()

	h := http.Header{}
	InjectHeaders(ctx, h)

	want := span.SpanContext().TraceID().String()
	if got := h.Get("traceparent"); len(got) < 36 || got[3:35] != want {
		t.Errorf("traceparent = %q, want trace ID %s", got, want)
	}
}
