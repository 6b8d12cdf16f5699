package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMiddleware_PropagatesParent(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(t.Context()) }()

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceID(r)
		w.WriteHeader(http.StatusNoContent)
	})

	h := otelhandler(tp, inner)
	req := httptest.NewRequest("POST", "/v1/rank", http.NoBody)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %q", seen)
	}
	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != "POST /v1/rank" {
		t.Fatalf("unexpected spans: %d", len(spans))
	}
}

func TestMiddleware_SkipsHealth(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(t.Context()) }()

	h := otelhandler(tp, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", http.NoBody))

	if n := len(rec.Ended()); n != 0 {
		t.Errorf("expected no spans for /health, got %d", n)
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if id := TraceID(httptest.NewRequest("GET", "/", http.NoBody)); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}

func otelhandler(tp *sdktrace.TracerProvider, next http.Handler) http.Handler {
	return middleware("test",
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(propagation.TraceContext{}),
	)(next)
}
