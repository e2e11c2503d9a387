package images

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments for catalog resolution.
type Metrics struct {
	resolveDuration metric.Float64Histogram
	imagesResolved  metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	resolveDuration, err := meter.Float64Histogram(
		"kc2_catalog_resolve_duration_seconds",
		metric.WithDescription("Time to resolve a remote image catalog"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	imagesResolved, err := meter.Int64Counter(
		"kc2_catalog_images_resolved_total",
		metric.WithDescription("Total number of images returned by catalog resolves"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		resolveDuration: resolveDuration,
		imagesResolved:  imagesResolved,
	}, nil
}

// recordResolve is safe to call on a nil receiver.
func (m *Metrics) recordResolve(ctx context.Context, remote RemoteKind, status string, start time.Time, count int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("remote", string(remote)),
		attribute.String("status", status),
	)
	m.resolveDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if count > 0 {
		m.imagesResolved.Add(ctx, int64(count), metric.WithAttributes(attribute.String("remote", string(remote))))
	}
}
