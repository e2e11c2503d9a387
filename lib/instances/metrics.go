package instances

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds the metrics instruments for instance operations.
type Metrics struct {
	provisionDuration   metric.Float64Histogram
	stateChangeDuration metric.Float64Histogram
	deleteDuration      metric.Float64Histogram
	cloudInitQueryDuration       metric.Float64Histogram
	stateTransitions    metric.Int64Counter
	tracer              trace.Tracer
}

// newInstanceMetrics creates and registers all instance metrics.
func newInstanceMetrics(meter metric.Meter, tracer trace.Tracer, m *manager) (*Metrics, error) {
	provisionDuration, err := meter.Float64Histogram(
		"kc2_instances_provision_duration_seconds",
		metric.WithDescription("Time to create an instance from a catalog image"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stateChangeDuration, err := meter.Float64Histogram(
		"kc2_instances_state_change_duration_seconds",
		metric.WithDescription("Time to start, stop or restart an instance"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	deleteDuration, err := meter.Float64Histogram(
		"kc2_instances_delete_duration_seconds",
		metric.WithDescription("Time to delete an instance"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	cloudInitQueryDuration, err := meter.Float64Histogram(
		"kc2_instances_cloudinit_query_duration_seconds",
		metric.WithDescription("Time to query cloud-init status inside a guest"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stateTransitions, err := meter.Int64Counter(
		"kc2_instances_state_transitions_total",
		metric.WithDescription("Total number of instance state transitions"),
	)
	if err != nil {
		return nil, err
	}

	// Counted from the hypervisor run state only. Probing every guest on each
	// collection would be far too slow.
	instancesTotal, err := meter.Int64ObservableGauge(
		"kc2_instances_total",
		metric.WithDescription("Total number of instances by run state and type"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			list, err := m.hv.ListInstances(ctx)
			if err != nil {
				return nil
			}
			type statusType struct {
				status string
				itype  string
			}
			counts := make(map[statusType]int64)
			for _, inst := range list {
				counts[statusType{inst.Status, string(inst.Type)}]++
			}
			for key, count := range counts {
				o.ObserveInt64(instancesTotal, count,
					metric.WithAttributes(
						attribute.String("status", key.status),
						attribute.String("type", key.itype),
					))
			}
			return nil
		},
		instancesTotal,
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provisionDuration:   provisionDuration,
		stateChangeDuration: stateChangeDuration,
		deleteDuration:      deleteDuration,
		cloudInitQueryDuration:       cloudInitQueryDuration,
		stateTransitions:    stateTransitions,
		tracer:              tracer,
	}, nil
}

// startSpan starts a span when tracing is configured. The returned span is
// always safe to End.
func (mt *Metrics) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if mt == nil || mt.tracer == nil {
		return ctx, noop.Span{}
	}
	return mt.tracer.Start(ctx, name)
}

// recordDuration records an operation's duration. op is "provision",
// "delete" or a state action.
func (m *manager) recordDuration(ctx context.Context, op string, start time.Time, status string) {
	if m.metrics == nil {
		return
	}
	duration := time.Since(start).Seconds()
	attrs := []attribute.KeyValue{attribute.String("status", status)}

	switch op {
	case "provision":
		m.metrics.provisionDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	case "delete":
		m.metrics.deleteDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	default:
		attrs = append(attrs, attribute.String("action", op))
		m.metrics.stateChangeDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
}

func (m *manager) recordStateTransition(ctx context.Context, fromState, toState string) {
	if m.metrics == nil {
		return
	}
	m.metrics.stateTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", fromState),
		attribute.String("to", toState),
	))
}

// recordCloudInitQuery is safe to call on a nil receiver.
func (mt *Metrics) recordCloudInitQuery(ctx context.Context, result CloudInitStatus, start time.Time) {
	if mt == nil {
		return
	}
	mt.cloudInitQueryDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("result", string(result))))
}
