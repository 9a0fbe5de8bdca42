package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the dashboard counters
type Metrics struct {
	messagesAppended  otelmetric.Int64Counter
	identityChanges   otelmetric.Int64Counter
	resourcesUploaded otelmetric.Int64Counter
	resourcesSkipped  otelmetric.Int64Counter
	resourcesRemoved  otelmetric.Int64Counter
	pagesConnected    otelmetric.Int64UpDownCounter
}

// NewMetrics registers the counters on provider
func NewMetrics(provider otelmetric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.messagesAppended, err = meter.Int64Counter("dashboard_messages_appended",
		otelmetric.WithDescription("Messages added to the board")); err != nil {
		return nil, err
	}
	if m.identityChanges, err = meter.Int64Counter("dashboard_identity_changes",
		otelmetric.WithDescription("Identity selections")); err != nil {
		return nil, err
	}
	if m.resourcesUploaded, err = meter.Int64Counter("dashboard_resources_uploaded",
		otelmetric.WithDescription("Media files stored")); err != nil {
		return nil, err
	}
	if m.resourcesSkipped, err = meter.Int64Counter("dashboard_resources_skipped",
		otelmetric.WithDescription("Uploaded files ignored because of their type")); err != nil {
		return nil, err
	}
	if m.resourcesRemoved, err = meter.Int64Counter("dashboard_resources_removed",
		otelmetric.WithDescription("Media files deleted")); err != nil {
		return nil, err
	}
	if m.pagesConnected, err = meter.Int64UpDownCounter("dashboard_pages_connected",
		otelmetric.WithDescription("Open page websockets")); err != nil {
		return nil, err
	}
	return m, nil
}

// NoopMetrics discards every measurement
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

func (m *Metrics) MessageAppended(ctx context.Context) {
	m.messagesAppended.Add(ctx, 1)
}

func (m *Metrics) IdentityChanged(ctx context.Context) {
	m.identityChanges.Add(ctx, 1)
}

func (m *Metrics) ResourceUploaded(ctx context.Context, collection, kind string) {
	m.resourcesUploaded.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("kind", kind),
	))
}

func (m *Metrics) ResourceSkipped(ctx context.Context, collection string) {
	m.resourcesSkipped.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("collection", collection)))
}

func (m *Metrics) ResourceRemoved(ctx context.Context, collection string) {
	m.resourcesRemoved.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("collection", collection)))
}

// PageConnected tracks open sockets; pass -1 on disconnect
func (m *Metrics) PageConnected(ctx context.Context, delta int64) {
	m.pagesConnected.Add(ctx, delta)
}
