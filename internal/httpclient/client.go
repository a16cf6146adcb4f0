package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// Default connection pool settings
	defaultDialKeepAlive         = 10 * time.Second
	defaultDialTimeout           = 5 * time.Second
	defaultRequestTimeout        = 10 * time.Second
	defaultMaxIdleConnsPerHost   = 4
	defaultMaxConnsPerHost       = 16
	defaultIdleConnTimeout       = 2 * time.Minute
	defaultExpectContinueTimeout = 100 * time.Millisecond

	metricRequestCounter = "http_client_requests_total"
	metricRequestLatency = "http_client_request_duration_ms"
)

// New creates an *http.Client whose transport is traced with otelhttp and
// counted per provider.
func New(opts ...ClientOption) (*http.Client, error) {
	options := NewClientOptions(opts...)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: defaultDialKeepAlive,
		}).DialContext,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		MaxConnsPerHost:       defaultMaxConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	meter := otel.GetMeterProvider().Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", providerName)),
	)

	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestLatency, err := meter.Float64Histogram(
		metricRequestLatency,
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	counted := &countingTransport{
		next:     transport,
		provider: providerName,
		requests: requestCounter,
		latency:  requestLatency,
	}

	timeout := defaultRequestTimeout
	if options.requestTimeout != nil {
		timeout = *options.requestTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(
			counted,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}, nil
}

// countingTransport records request outcomes. 5xx responses count as failures.
type countingTransport struct {
	next     http.RoundTripper
	provider string
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	success := err == nil && resp.StatusCode < http.StatusInternalServerError
	attrs := metric.WithAttributes(
		attribute.String("provider", t.provider),
		attribute.String("host", req.URL.Host),
		attribute.Bool("success", success),
	)

	ctx := req.Context()
	t.requests.Add(ctx, 1, attrs)
	t.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

	return resp, err
}
