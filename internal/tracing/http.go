package tracing

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Middleware opens a server span per request and extracts W3C trace context
// from the incoming headers. Span names are "METHOD /path".
func Middleware(operation string) func(http.Handler) http.Handler {
	return middleware(operation)
}

func middleware(operation string, extra ...otelhttp.Option) func(http.Handler) http.Handler {
	opts := append([]otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	}, extra...)
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation, opts...)
	}
}

// TraceID returns the active trace id of r, or "" when none is sampled.
func TraceID(r *http.Request) string {
	sc := trace.SpanContextFromContext(r.Context())
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
