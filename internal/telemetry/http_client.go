package telemetry

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// HTTPClientConfig holds configuration for an instrumented HTTP client
type HTTPClientConfig struct {
	ServiceName string // e.g. "openai"
	Timeout     time.Duration
}

// NewInstrumentedHTTPClient returns a client whose requests are traced
func NewInstrumentedHTTPClient(cfg HTTPClientConfig) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: otelhttp.NewTransport(
			http.DefaultTransport,
			otelhttp.WithClientTrace(),
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if cfg.ServiceName == "" {
					return r.Method + " " + r.URL.Path
				}
				return cfg.ServiceName + " " + r.Method + " " + r.URL.Path
			}),
		),
	}
}
