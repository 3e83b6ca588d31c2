package service

import (
	"context"
	"time"

	"webhook-outbox/internal/core/domain"
	"webhook-outbox/internal/core/ports"
	"webhook-outbox/internal/telemetry"

	"github.com/rs/zerolog"
)

// WorkerConfig holds the loop and retry parameters.
type WorkerConfig struct {
	WorkerID     string
	BatchSize    int
	PollInterval time.Duration
	LockTTL      time.Duration
	MaxAttempts  int
	Backoff      BackoffPolicy
}

// Worker runs the poll-claim-process loop. Any number of workers may run
// against the same store; they coordinate only through the claim predicate.
type Worker struct {
	cfg      WorkerConfig
	outbox   ports.OutboxRepository
	subs     ports.SubscriptionRepository
	delivery ports.DeliveryClient
	secrets  *SecretResolver
	metrics  *telemetry.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

// NewWorker creates a delivery worker.
func NewWorker(
	cfg WorkerConfig,
	outbox ports.OutboxRepository,
	subs ports.SubscriptionRepository,
	delivery ports.DeliveryClient,
	secrets *SecretResolver,
	metrics *telemetry.Metrics,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		cfg:      cfg,
		outbox:   outbox,
		subs:     subs,
		delivery: delivery,
		secrets:  secrets,
		metrics:  metrics,
		now:      time.Now,
		log:      log.With().Str("worker_id", cfg.WorkerID).Logger(),
	}
}

// Run polls until ctx is canceled. An in-flight batch finishes before Run
// returns; an item interrupted harder than that is recovered by another
// worker once its lock expires.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info().
		Int("batch_size", w.cfg.BatchSize).
		Dur("poll_interval", w.cfg.PollInterval).
		Dur("lock_ttl", w.cfg.LockTTL).
		Int("max_attempts", w.cfg.MaxAttempts).
		Msg("worker: loop started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.RunOnce(ctx)
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker: loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims one batch and processes it sequentially.
func (w *Worker) RunOnce(ctx context.Context) {
	items, err := w.outbox.ClaimBatch(ctx, w.cfg.WorkerID, w.cfg.BatchSize, w.cfg.LockTTL)
	if err != nil {
		w.log.Error().Err(err).Msg("worker: claim failed")
		return
	}
	w.metrics.RecordClaim(ctx, len(items))
	if len(items) == 0 {
		return
	}

	w.log.Debug().Int("claimed", len(items)).Msg("worker: batch claimed")
	for i := range items {
		w.ProcessItem(ctx, &items[i])
	}
}

// ProcessItem drives one claimed item through delivery and applies the
// success/retry/dead decision.
func (w *Worker) ProcessItem(ctx context.Context, item *domain.OutboxItem) {
	sub, lookupErr := w.resolveSubscription(ctx, item)
	if lookupErr != nil {
		// Transient store failure, not a gone target: leave the item locked
		// and let the lock expiry hand it to another attempt.
		w.log.Error().Err(lookupErr).Str("item_id", item.ID.String()).Msg("worker: subscription lookup failed")
		return
	}
	if sub == nil {
		// Retrying against a deleted or disabled target can never succeed.
		if err := w.outbox.MarkDead(ctx, item.ID, item.AttemptCount, nil, domain.ErrWebhookUnavailable); err != nil {
			w.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("worker: mark dead failed")
			return
		}
		w.metrics.RecordDead(ctx, domain.ErrWebhookUnavailable)
		w.log.Warn().Str("item_id", item.ID.String()).Str("event", item.Event).Msg("worker: target unavailable, item dead")
		return
	}

	secret, err := w.secrets.Resolve(ctx, sub)
	if err != nil {
		// The stored secret is unreadable; deliver unsigned rather than
		// failing the item.
		w.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("worker: secret unavailable, sending unsigned")
		secret = ""
	}

	res := w.delivery.Send(ctx, sub.URL, item.Event, item.Payload, secret)
	if res.OK {
		if err := w.outbox.MarkSent(ctx, item.ID, *res.StatusCode); err != nil {
			w.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("worker: mark sent failed")
			return
		}
		w.metrics.RecordSent(ctx)
		w.log.Info().Str("item_id", item.ID.String()).Str("event", item.Event).Int("attempt", item.AttemptCount+1).Msg("worker: delivered")
		return
	}

	attempts := item.AttemptCount + 1
	if attempts >= w.cfg.MaxAttempts {
		if err := w.outbox.MarkDead(ctx, item.ID, attempts, res.StatusCode, res.Err); err != nil {
			w.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("worker: mark dead failed")
			return
		}
		w.metrics.RecordDead(ctx, "max_attempts")
		w.log.Warn().Str("item_id", item.ID.String()).Str("event", item.Event).Int("attempts", attempts).Str("error", res.Err).Msg("worker: attempts exhausted, item dead")
		return
	}

	next := w.now().Add(w.cfg.Backoff.Delay(attempts))
	if err := w.outbox.MarkRetry(ctx, item.ID, attempts, next, res.StatusCode, res.Err); err != nil {
		w.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("worker: mark retry failed")
		return
	}
	w.metrics.RecordRetried(ctx)
	w.log.Info().Str("item_id", item.ID.String()).Str("event", item.Event).Int("attempt", attempts).Time("next_attempt_at", next).Str("error", res.Err).Msg("worker: retry scheduled")
}

// resolveSubscription returns the item's subscription when it is present,
// active, and owned by the item's user. A nil, nil return means the target
// is gone for good; an error means the lookup itself failed.
func (w *Worker) resolveSubscription(ctx context.Context, item *domain.OutboxItem) (*domain.WebhookSubscription, error) {
	if item.WebhookID == nil {
		return nil, nil
	}
	sub, err := w.subs.GetByID(ctx, *item.WebhookID)
	if err != nil {
		return nil, err
	}
	if sub == nil || !sub.Active || sub.UserID != item.UserID {
		return nil, nil
	}
	return sub, nil
}
