package events

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/campusbell/campusbell/internal/events"

// FeedMetrics holds metrics for upstream feed calls and event-cache serving.
type FeedMetrics struct {
	refreshDuration metric.Float64Histogram
	refreshTotal    metric.Int64Counter
	cacheServed     metric.Int64Counter
	staticServed    metric.Int64Counter
}

// NewFeedMetrics creates metrics for monitoring the calendar feed pipeline.
func NewFeedMetrics() (*FeedMetrics, error) {
	meter := otel.Meter(meterName)

	refreshDuration, err := meter.Float64Histogram(
		"feed.refresh.duration",
		metric.WithDescription("Duration of feed refresh attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	refreshTotal, err := meter.Int64Counter(
		"feed.refresh.total",
		metric.WithDescription("Total number of feed refresh attempts"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	cacheServed, err := meter.Int64Counter(
		"events.cache.served",
		metric.WithDescription("Number of reads answered from refreshed data"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	staticServed, err := meter.Int64Counter(
		"events.static.served",
		metric.WithDescription("Number of reads answered from bundled data"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, err
	}

	return &FeedMetrics{
		refreshDuration: refreshDuration,
		refreshTotal:    refreshTotal,
		cacheServed:     cacheServed,
		staticServed:    staticServed,
	}, nil
}

// RecordRefresh records one refresh attempt.
func (m *FeedMetrics) RecordRefresh(provider string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Use background context for metrics to avoid context cancellation issues
	ctx := context.TODO()
	m.refreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.refreshTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRead records one read, bucketed by whether refreshed or bundled data
// answered it.
func (m *FeedMetrics) RecordRead(remote bool) {
	if m == nil {
		return
	}

	if remote {
		m.cacheServed.Add(context.TODO(), 1)
		return
	}
	m.staticServed.Add(context.TODO(), 1)
}
