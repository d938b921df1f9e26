package gateway

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/roadieapp/roadie/internal/gateway"

// DeliveryMetrics holds metrics for outbound notice delivery.
type DeliveryMetrics struct {
	deliveryDuration metric.Float64Histogram
	deliveryTotal    metric.Int64Counter
}

// NewDeliveryMetrics creates metrics for monitoring delivery webhook calls.
func NewDeliveryMetrics() (*DeliveryMetrics, error) {
	meter := otel.Meter(meterName)

	deliveryDuration, err := meter.Float64Histogram(
		"delivery.request.duration",
		metric.WithDescription("Duration of delivery webhook requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	deliveryTotal, err := meter.Int64Counter(
		"delivery.request.total",
		metric.WithDescription("Total number of delivery webhook requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &DeliveryMetrics{
		deliveryDuration: deliveryDuration,
		deliveryTotal:    deliveryTotal,
	}, nil
}

// RecordDelivery records one delivery attempt on a channel.
func (m *DeliveryMetrics) RecordDelivery(channel string, kind NoticeKind, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("delivery.channel", channel),
		attribute.String("delivery.kind", string(kind)),
	}

	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Use background context for metrics to avoid context cancellation issues
	ctx := context.TODO()
	m.deliveryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.deliveryTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
