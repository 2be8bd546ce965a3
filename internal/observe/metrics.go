// Package observe provides application-wide observability primitives for
// nutrifit: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all nutrifit metrics.
const meterName = "github.com/nutrifit/nutrifit"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use - the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ToolDuration tracks MCP tool execution latency. Use with attribute:
	//   attribute.String("tool", ...)
	ToolDuration metric.Float64Histogram

	// ToolCalls counts tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// ResourceReads counts MCP resource reads. Use with attribute:
	//   attribute.String("uri", ...)
	ResourceReads metric.Int64Counter

	// UpstreamRequests counts upstream API calls. Use with attributes:
	//   attribute.String("api", ...), attribute.String("operation", ...), attribute.String("status", ...)
	UpstreamRequests metric.Int64Counter

	// UpstreamErrors counts upstream API failures. Use with attributes:
	//   attribute.String("api", ...), attribute.String("operation", ...)
	UpstreamErrors metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// tool calls that fan out to public HTTP APIs.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ToolDuration, err = m.Float64Histogram("nutrifit.tool.duration",
		metric.WithDescription("Latency of MCP tool execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("nutrifit.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.ResourceReads, err = m.Int64Counter("nutrifit.resource.reads",
		metric.WithDescription("Total MCP resource reads by URI."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamRequests, err = m.Int64Counter("nutrifit.upstream.requests",
		metric.WithDescription("Total upstream API requests by API, operation, and status."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamErrors, err = m.Int64Counter("nutrifit.upstream.errors",
		metric.WithDescription("Total upstream API errors by API and operation."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("nutrifit.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordToolCall is a convenience method that records a tool call counter
// increment and the call's duration with the standard attribute set.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, seconds float64) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
	m.ToolDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("tool", tool)),
	)
}

// RecordResourceRead is a convenience method that records a resource read
// counter increment.
func (m *Metrics) RecordResourceRead(ctx context.Context, uri string) {
	m.ResourceReads.Add(ctx, 1,
		metric.WithAttributes(attribute.String("uri", uri)),
	)
}

// RecordUpstreamRequest is a convenience method that records an upstream
// request counter increment with the standard attribute set.
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, api, operation, status string) {
	m.UpstreamRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("api", api),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordUpstreamError is a convenience method that records an upstream error
// counter increment.
func (m *Metrics) RecordUpstreamError(ctx context.Context, api, operation string) {
	m.UpstreamErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("api", api),
			attribute.String("operation", operation),
		),
	)
}
