package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"webhook-outbox/internal/core/domain"
	"webhook-outbox/internal/core/ports"
	"webhook-outbox/internal/telemetry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DeliveryMode selects how enqueued events reach receivers. It is resolved
// once from configuration; the three paths never mix at runtime.
type DeliveryMode string

const (
	// ModeLegacy performs best-effort direct sends with no durable rows.
	ModeLegacy DeliveryMode = "legacy"
	// ModeShadow writes shadow rows for observability while the legacy
	// direct send remains the delivery path.
	ModeShadow DeliveryMode = "shadow"
	// ModeOutbox writes pending rows; the worker owns delivery.
	ModeOutbox DeliveryMode = "outbox"
)

// enqueueService implements ports.EnqueueService.
type enqueueService struct {
	mode      DeliveryMode
	subs      ports.SubscriptionRepository
	outbox    ports.OutboxRepository
	delivery  ports.DeliveryClient
	secrets   *SecretResolver
	dedupe    ports.DedupeStore
	dedupeTTL time.Duration
	metrics   *telemetry.Metrics
	log       zerolog.Logger
}

// NewEnqueueService creates the producer-facing enqueue entrypoint.
// dedupe may be nil; dedupeTTL <= 0 disables the duplicate-suppression
// window even when a store is present.
func NewEnqueueService(
	mode DeliveryMode,
	subs ports.SubscriptionRepository,
	outbox ports.OutboxRepository,
	delivery ports.DeliveryClient,
	secrets *SecretResolver,
	dedupe ports.DedupeStore,
	dedupeTTL time.Duration,
	metrics *telemetry.Metrics,
	log zerolog.Logger,
) ports.EnqueueService {
	return &enqueueService{
		mode:      mode,
		subs:      subs,
		outbox:    outbox,
		delivery:  delivery,
		secrets:   secrets,
		dedupe:    dedupe,
		dedupeTTL: dedupeTTL,
		metrics:   metrics,
		log:       log,
	}
}

// Enqueue resolves the matching subscriptions for the event and, depending on
// the delivery mode, writes durable rows, fires legacy direct sends, or both.
// Only persistence failures propagate; delivery failures never do.
func (s *enqueueService) Enqueue(ctx context.Context, userID uuid.UUID, event string, payload json.RawMessage, webhookID *uuid.UUID) (int, error) {
	if dup, err := s.isDuplicate(ctx, userID, event, payload); err == nil && dup {
		s.log.Debug().Str("user_id", userID.String()).Str("event", event).Msg("enqueue: duplicate suppressed")
		return 0, nil
	}

	subs, err := s.matchingSubscriptions(ctx, userID, event, webhookID)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, nil
	}

	switch s.mode {
	case ModeLegacy:
		for i := range subs {
			s.directSend(ctx, &subs[i], event, payload)
		}
		s.metrics.RecordEnqueued(ctx, string(ModeLegacy), "none", len(subs))
		return 0, nil

	case ModeShadow:
		written, err := s.insertItems(ctx, userID, subs, event, payload, domain.OutboxStatusShadow)
		if err != nil {
			return written, err
		}
		for i := range subs {
			s.directSend(ctx, &subs[i], event, payload)
		}
		s.metrics.RecordEnqueued(ctx, string(ModeShadow), domain.OutboxStatusShadow, written)
		return written, nil

	default: // ModeOutbox
		written, err := s.insertItems(ctx, userID, subs, event, payload, domain.OutboxStatusPending)
		if err != nil {
			return written, err
		}
		s.metrics.RecordEnqueued(ctx, string(ModeOutbox), domain.OutboxStatusPending, written)
		return written, nil
	}
}

func (s *enqueueService) matchingSubscriptions(ctx context.Context, userID uuid.UUID, event string, webhookID *uuid.UUID) ([]domain.WebhookSubscription, error) {
	if webhookID != nil {
		sub, err := s.subs.GetByID(ctx, *webhookID)
		if err != nil {
			return nil, fmt.Errorf("resolving webhook %s: %w", webhookID, err)
		}
		if sub == nil || sub.UserID != userID || !sub.Matches(event) {
			return nil, nil
		}
		return []domain.WebhookSubscription{*sub}, nil
	}

	all, err := s.subs.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks for user %s: %w", userID, err)
	}
	matched := all[:0:0]
	for _, sub := range all {
		if sub.Matches(event) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

func (s *enqueueService) insertItems(ctx context.Context, userID uuid.UUID, subs []domain.WebhookSubscription, event string, payload json.RawMessage, status domain.OutboxStatus) (int, error) {
	written := 0
	for i := range subs {
		webhookID := subs[i].ID
		item := domain.NewOutboxItem(userID, &webhookID, event, payload, status)
		if err := s.outbox.Insert(ctx, item); err != nil {
			// A durable event that silently fails to persist would break the
			// delivery guarantee, so this must reach the producer.
			return written, fmt.Errorf("persisting outbox item for webhook %s: %w", webhookID, err)
		}
		written++
	}
	return written, nil
}

// directSend fires one best-effort legacy delivery. Failures are logged only.
func (s *enqueueService) directSend(ctx context.Context, sub *domain.WebhookSubscription, event string, payload json.RawMessage) {
	secret, err := s.secrets.Resolve(ctx, sub)
	if err != nil {
		s.log.Warn().Err(err).Str("webhook_id", sub.ID.String()).Msg("enqueue: secret unavailable, sending unsigned")
		secret = ""
	}
	url := sub.URL
	webhookID := sub.ID
	go func() {
		res := s.delivery.Send(context.Background(), url, event, payload, secret)
		if !res.OK {
			s.log.Warn().Str("webhook_id", webhookID.String()).Str("event", event).Str("error", res.Err).Msg("enqueue: legacy direct send failed")
		}
	}()
}

// isDuplicate consults the dedupe window. Store trouble never blocks an
// enqueue; the guard simply does not apply.
func (s *enqueueService) isDuplicate(ctx context.Context, userID uuid.UUID, event string, payload json.RawMessage) (bool, error) {
	if s.dedupe == nil || s.dedupeTTL <= 0 {
		return false, nil
	}
	sum := sha256.Sum256([]byte(userID.String() + "|" + event + "|" + string(payload)))
	fresh, err := s.dedupe.Acquire(ctx, hex.EncodeToString(sum[:]), s.dedupeTTL)
	if err != nil {
		s.log.Warn().Err(err).Msg("enqueue: dedupe store unavailable, proceeding")
		return false, nil
	}
	return !fresh, nil
}
