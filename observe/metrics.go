// Package observe holds the service's OpenTelemetry metric instruments, the
// Prometheus exporter bridge, and wrappers that time calls to the
// generation and search collaborators.
package observe

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "safevoice-backend"

// Metrics holds every instrument the service records
type Metrics struct {
	// GenerationDuration tracks language model latency.
	GenerationDuration metric.Float64Histogram

	// SearchDuration tracks web search latency.
	SearchDuration metric.Float64Histogram

	// ProviderRequests counts collaborator calls. Attributes: provider, kind, status.
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts failed collaborator calls. Attributes: provider, kind.
	ProviderErrors metric.Int64Counter

	// DocumentsGenerated counts FIR drafts. Attribute: status.
	DocumentsGenerated metric.Int64Counter

	// ChatFallbacks counts assistant replies replaced by the fallback text.
	ChatFallbacks metric.Int64Counter

	// HTTPRequestDuration tracks request latency. Attributes: method, route, status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates all instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.GenerationDuration, err = m.Float64Histogram("safevoice.generation.duration",
		metric.WithDescription("Latency of language model generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SearchDuration, err = m.Float64Histogram("safevoice.search.duration",
		metric.WithDescription("Latency of web search."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("safevoice.provider.requests",
		metric.WithDescription("Collaborator requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("safevoice.provider.errors",
		metric.WithDescription("Collaborator errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.DocumentsGenerated, err = m.Int64Counter("safevoice.documents.generated",
		metric.WithDescription("FIR drafts processed by outcome."),
	); err != nil {
		return nil, err
	}
	if met.ChatFallbacks, err = m.Int64Counter("safevoice.chat.fallbacks",
		metric.WithDescription("Assistant replies replaced by the fallback message."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("safevoice.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordProviderCall records one collaborator call and its latency
func (m *Metrics) RecordProviderCall(ctx context.Context, hist metric.Float64Histogram, provider, kind string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("kind", kind),
	}
	hist.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))

	status := "ok"
	if err != nil {
		status = "error"
		m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.ProviderRequests.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("status", status))...))
}

// RecordDocument counts a finished FIR job
func (m *Metrics) RecordDocument(ctx context.Context, status string) {
	m.DocumentsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordFallback counts a fallback assistant reply
func (m *Metrics) RecordFallback(ctx context.Context) {
	m.ChatFallbacks.Add(ctx, 1)
}

// Middleware records request latency per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestDuration.Record(c.Request.Context(), time.Since(start).Seconds(),
			metric.WithAttributes(
				attribute.String("method", c.Request.Method),
				attribute.String("route", route),
				attribute.Int("status", c.Writer.Status()),
			),
		)
	}
}
