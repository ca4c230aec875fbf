package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DomainMetrics counts domain events seen by the audit worker.
type DomainMetrics struct {
	events metric.Int64Counter
}

// NewDomainMetrics registers instruments on the global meter provider.
func NewDomainMetrics() (*DomainMetrics, error) {
	return newDomainMetrics(otel.Meter(instrumentationName))
}

func newDomainMetrics(meter metric.Meter) (*DomainMetrics, error) {
	events, err := meter.Int64Counter(
		"hospital_domain_events_total",
		metric.WithDescription("Domain events observed, by type"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}
	return &DomainMetrics{events: events}, nil
}

func (m *DomainMetrics) Event(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}
