package telemetry

import (
	"context"

	"webhook-outbox/internal/core/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "webhook-outbox"

// QueueDepther reports queue depth per status, implemented by the outbox
// repositories.
type QueueDepther interface {
	CountByStatus(ctx context.Context) (map[domain.OutboxStatus]int64, error)
}

// Metrics bundles the outbox instruments. A Metrics built from a noop
// MeterProvider records nothing, so callers never nil-check.
type Metrics struct {
	enqueued     metric.Int64Counter
	sent         metric.Int64Counter
	retried      metric.Int64Counter
	dead         metric.Int64Counter
	claimBatches metric.Int64Counter
	claimedItems metric.Int64Counter
}

// NewMetrics creates the outbox counters on the given provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	enqueued, err := meter.Int64Counter("webhook_outbox_enqueued_total",
		metric.WithDescription("Events accepted by the enqueuer, by delivery mode and resulting status"))
	if err != nil {
		return nil, err
	}
	sent, err := meter.Int64Counter("webhook_outbox_sent_total",
		metric.WithDescription("Items delivered with a 2xx response"))
	if err != nil {
		return nil, err
	}
	retried, err := meter.Int64Counter("webhook_outbox_retried_total",
		metric.WithDescription("Failed attempts rescheduled with backoff"))
	if err != nil {
		return nil, err
	}
	dead, err := meter.Int64Counter("webhook_outbox_dead_total",
		metric.WithDescription("Items dead-lettered after exhausting attempts or losing their target"))
	if err != nil {
		return nil, err
	}
	claimBatches, err := meter.Int64Counter("webhook_outbox_claim_batches_total",
		metric.WithDescription("Claim calls issued by the worker loop"))
	if err != nil {
		return nil, err
	}
	claimedItems, err := meter.Int64Counter("webhook_outbox_claimed_items_total",
		metric.WithDescription("Items assigned to this worker across all claim calls"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		enqueued:     enqueued,
		sent:         sent,
		retried:      retried,
		dead:         dead,
		claimBatches: claimBatches,
		claimedItems: claimedItems,
	}, nil
}

// RecordEnqueued counts one enqueued event per matching subscription.
func (m *Metrics) RecordEnqueued(ctx context.Context, mode string, status domain.OutboxStatus, count int) {
	m.enqueued.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", string(status)),
	))
}

// RecordSent counts a successful delivery.
func (m *Metrics) RecordSent(ctx context.Context) {
	m.sent.Add(ctx, 1)
}

// RecordRetried counts a failed attempt that was rescheduled.
func (m *Metrics) RecordRetried(ctx context.Context) {
	m.retried.Add(ctx, 1)
}

// RecordDead counts a dead-lettered item, labeled by reason.
func (m *Metrics) RecordDead(ctx context.Context, reason string) {
	m.dead.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordClaim counts one claim call and the items it returned.
func (m *Metrics) RecordClaim(ctx context.Context, items int) {
	m.claimBatches.Add(ctx, 1)
	m.claimedItems.Add(ctx, int64(items))
}

// RegisterQueueDepth registers an observable gauge reporting queue depth per
// status from the given store. Observation errors surface through the
// callback, not as worker failures.
func RegisterQueueDepth(provider metric.MeterProvider, store QueueDepther) error {
	meter := provider.Meter(meterName)
	_, err := meter.Int64ObservableGauge("webhook_outbox_queue_depth",
		metric.WithDescription("Outbox rows per status"),
		metric.WithUnit("{item}"),
		metric.WithInt64Callback(func(ctx context.Context, observer metric.Int64Observer) error {
			counts, err := store.CountByStatus(ctx)
			if err != nil {
				return err
			}
			for status, n := range counts {
				observer.Observe(n, metric.WithAttributes(attribute.String("status", string(status))))
			}
			return nil
		}),
	)
	return err
}
