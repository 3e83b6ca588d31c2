package ports

import (
	"context"
	"time"

	"webhook-outbox/internal/core/domain"

	"github.com/google/uuid"
)

// SubscriptionRepository defines worker-side read access to webhook
// subscriptions, plus the one write the secret vault migration needs.
type SubscriptionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookSubscription, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.WebhookSubscription, error)
	// UpdateSecret re-stores a secret under a new vault key id. Used only by
	// the legacy plaintext migration; subscription content is otherwise
	// single-writer via the owning user's API.
	UpdateSecret(ctx context.Context, id uuid.UUID, secretEnc, keyID string) error
}

// OutboxRepository is the durable queue. All cross-worker coordination goes
// through ClaimBatch and the conditional status updates; there are no
// external locks.
type OutboxRepository interface {
	Insert(ctx context.Context, item *domain.OutboxItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error)

	// ClaimBatch atomically assigns up to batchSize claimable rows to
	// workerID, moving them to processing with a lock valid for lockTTL.
	// A row is claimable when it is pending/retry and due, or processing
	// with an expired lock (stale lock from a dead worker). Rows are taken
	// oldest-due first. No row is ever returned to two workers while both
	// locks are unexpired.
	ClaimBatch(ctx context.Context, workerID string, batchSize int, lockTTL time.Duration) ([]domain.OutboxItem, error)

	// MarkSent finalizes a delivered item and releases its lock.
	MarkSent(ctx context.Context, id uuid.UUID, statusCode int) error
	// MarkRetry records a failed attempt and schedules the next one.
	MarkRetry(ctx context.Context, id uuid.UUID, attemptCount int, nextAttemptAt time.Time, statusCode *int, lastError string) error
	// MarkDead dead-letters an item, recording the final attempt's outcome.
	MarkDead(ctx context.Context, id uuid.UUID, attemptCount int, statusCode *int, lastError string) error

	// RequeueDead reopens one dead item to retry with nextAttemptAt = now,
	// clearing dead_at and lock fields.
	RequeueDead(ctx context.Context, id uuid.UUID) error
	// RequeueDeadBatch reopens up to limit dead items, oldest first.
	RequeueDeadBatch(ctx context.Context, limit int) (int, error)

	// Purge deletes rows in the given terminal statuses created before the
	// cutoff. Returns the number of rows removed.
	Purge(ctx context.Context, statuses []domain.OutboxStatus, olderThan time.Time) (int64, error)

	// CountByStatus returns queue depth per status for the metrics gauge.
	CountByStatus(ctx context.Context) (map[domain.OutboxStatus]int64, error)
}
