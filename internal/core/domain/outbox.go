package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for operator-driven outbox mutations.
var (
	ErrItemNotFound = errors.New("outbox item not found")
	ErrItemNotDead  = errors.New("outbox item is not dead")
)

// OutboxStatus represents the delivery state of an outbox item.
type OutboxStatus string

const (
	// OutboxStatusShadow rows are written for observability while legacy
	// direct-send remains the delivery path. The worker never claims them.
	OutboxStatusShadow OutboxStatus = "shadow"
	// OutboxStatusPending rows are due for their first delivery attempt.
	OutboxStatusPending OutboxStatus = "pending"
	// OutboxStatusProcessing rows are locked by a worker for one attempt.
	OutboxStatusProcessing OutboxStatus = "processing"
	// OutboxStatusRetry rows failed and wait for their next attempt.
	OutboxStatusRetry OutboxStatus = "retry"
	// OutboxStatusSent is terminal: the receiver acknowledged with a 2xx.
	OutboxStatusSent OutboxStatus = "sent"
	// OutboxStatusDead is terminal: attempts are exhausted or the target is
	// gone. An operator may reopen a dead item back to retry.
	OutboxStatusDead OutboxStatus = "dead"
)

// ErrWebhookUnavailable is recorded as last_error when the subscription an
// item references was deleted, deactivated, or belongs to a different user.
const ErrWebhookUnavailable = "webhook_unavailable"

// IsTerminal reports whether the status permits no worker-driven transition.
func (s OutboxStatus) IsTerminal() bool {
	return s == OutboxStatusShadow || s == OutboxStatusSent || s == OutboxStatusDead
}

// CanTransition reports whether moving from s to next is a legal state
// machine edge. dead -> retry is the operator requeue, the only externally
// triggered backward transition.
func (s OutboxStatus) CanTransition(next OutboxStatus) bool {
	switch s {
	case OutboxStatusPending, OutboxStatusRetry:
		return next == OutboxStatusProcessing
	case OutboxStatusProcessing:
		return next == OutboxStatusSent || next == OutboxStatusRetry || next == OutboxStatusDead
	case OutboxStatusDead:
		return next == OutboxStatusRetry
	default:
		return false
	}
}

// OutboxItem is one delivery task: a payload snapshot bound to at most one
// subscription. The payload is captured at enqueue time and never recomputed,
// so retries always deliver the same bytes.
type OutboxItem struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	WebhookID      *uuid.UUID      `json:"webhook_id"`
	Event          string          `json:"event"`
	Payload        json.RawMessage `json:"payload"`
	Status         OutboxStatus    `json:"status"`
	AttemptCount   int             `json:"attempt_count"`
	NextAttemptAt  time.Time       `json:"next_attempt_at"`
	LastAttemptAt  *time.Time      `json:"last_attempt_at"`
	DeliveredAt    *time.Time      `json:"delivered_at"`
	DeadAt         *time.Time      `json:"dead_at"`
	LastStatusCode *int            `json:"last_status_code"`
	LastError      *string         `json:"last_error"`
	LockedBy       *string         `json:"locked_by"`
	LockedUntil    *time.Time      `json:"locked_until"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewOutboxItem builds an item ready for insertion. status must be shadow or
// pending; pending items are due immediately.
func NewOutboxItem(userID uuid.UUID, webhookID *uuid.UUID, event string, payload json.RawMessage, status OutboxStatus) *OutboxItem {
	now := time.Now().UTC()
	return &OutboxItem{
		ID:            uuid.New(),
		UserID:        userID,
		WebhookID:     webhookID,
		Event:         event,
		Payload:       payload,
		Status:        status,
		AttemptCount:  0,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// LockExpired reports whether the item's processing lock has lapsed, making
// it eligible for re-claim by any worker.
func (i *OutboxItem) LockExpired(now time.Time) bool {
	return i.Status == OutboxStatusProcessing && i.LockedUntil != nil && i.LockedUntil.Before(now)
}

// Claimable reports whether a worker may claim the item at the given instant.
func (i *OutboxItem) Claimable(now time.Time) bool {
	switch i.Status {
	case OutboxStatusPending, OutboxStatusRetry:
		return !i.NextAttemptAt.After(now)
	case OutboxStatusProcessing:
		return i.LockExpired(now)
	default:
		return false
	}
}
