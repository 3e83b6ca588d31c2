package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"webhook-outbox/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const outboxColumns = `id, user_id, webhook_id, event, payload, status, attempt_count,
	next_attempt_at, last_attempt_at, delivered_at, dead_at,
	last_status_code, last_error, locked_by, locked_until, created_at, updated_at`

// OutboxRepo implements ports.OutboxRepository. Claim coordination relies on
// FOR UPDATE SKIP LOCKED, so any number of worker processes can share the
// table without an external lock service.
type OutboxRepo struct {
	pool Pool
}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(pool Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// Insert persists a freshly enqueued item.
func (r *OutboxRepo) Insert(ctx context.Context, item *domain.OutboxItem) error {
	query := `INSERT INTO webhook_outbox
		(id, user_id, webhook_id, event, payload, status, attempt_count, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.UserID, item.WebhookID, item.Event,
		item.Payload, string(item.Status), item.AttemptCount,
		item.NextAttemptAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox item: %w", err)
	}
	return nil
}

// GetByID fetches one item. Returns nil, nil when absent.
func (r *OutboxRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error) {
	query := `SELECT ` + outboxColumns + ` FROM webhook_outbox WHERE id = $1`

	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outbox item by id: %w", err)
	}
	return item, nil
}

// ClaimBatch atomically moves up to batchSize due rows to processing under
// workerID's lock. The inner SELECT ... FOR UPDATE SKIP LOCKED keeps
// concurrent claimers from blocking on each other's rows, and the single
// UPDATE makes claim-and-lock one atomic step.
func (r *OutboxRepo) ClaimBatch(ctx context.Context, workerID string, batchSize int, lockTTL time.Duration) ([]domain.OutboxItem, error) {
	query := `UPDATE webhook_outbox
		SET status='processing', locked_by=$1,
			locked_until=NOW() + make_interval(secs => $2),
			updated_at=NOW()
		WHERE id IN (
			SELECT id FROM webhook_outbox
			WHERE (status IN ('pending', 'retry') AND next_attempt_at <= NOW())
			   OR (status = 'processing' AND locked_until < NOW())
			ORDER BY next_attempt_at, created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns

	rows, err := r.pool.Query(ctx, query, workerID, lockTTL.Seconds(), batchSize)
	if err != nil {
		return nil, fmt.Errorf("claim outbox batch: %w", err)
	}
	defer rows.Close()

	var items []domain.OutboxItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claimed item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MarkSent finalizes a delivered item and releases its lock.
func (r *OutboxRepo) MarkSent(ctx context.Context, id uuid.UUID, statusCode int) error {
	query := `UPDATE webhook_outbox
		SET status='sent', attempt_count=attempt_count+1,
			last_status_code=$1, last_error=NULL,
			last_attempt_at=NOW(), delivered_at=NOW(),
			locked_by=NULL, locked_until=NULL, updated_at=NOW()
		WHERE id=$2 AND status='processing'`

	tag, err := r.pool.Exec(ctx, query, statusCode, id)
	if err != nil {
		return fmt.Errorf("mark outbox item sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark outbox item sent: item %s not in processing", id)
	}
	return nil
}

// MarkRetry records a failed attempt and schedules the next one.
func (r *OutboxRepo) MarkRetry(ctx context.Context, id uuid.UUID, attemptCount int, nextAttemptAt time.Time, statusCode *int, lastError string) error {
	query := `UPDATE webhook_outbox
		SET status='retry', attempt_count=$1, next_attempt_at=$2,
			last_status_code=$3, last_error=$4, last_attempt_at=NOW(),
			locked_by=NULL, locked_until=NULL, updated_at=NOW()
		WHERE id=$5 AND status='processing'`

	tag, err := r.pool.Exec(ctx, query, attemptCount, nextAttemptAt, statusCode, lastError, id)
	if err != nil {
		return fmt.Errorf("mark outbox item retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark outbox item retry: item %s not in processing", id)
	}
	return nil
}

// MarkDead dead-letters an item, recording the final attempt's outcome.
func (r *OutboxRepo) MarkDead(ctx context.Context, id uuid.UUID, attemptCount int, statusCode *int, lastError string) error {
	query := `UPDATE webhook_outbox
		SET status='dead', attempt_count=$1,
			last_status_code=$2, last_error=$3,
			last_attempt_at=NOW(), dead_at=NOW(),
			locked_by=NULL, locked_until=NULL, updated_at=NOW()
		WHERE id=$4 AND status='processing'`

	tag, err := r.pool.Exec(ctx, query, attemptCount, statusCode, lastError, id)
	if err != nil {
		return fmt.Errorf("mark outbox item dead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark outbox item dead: item %s not in processing", id)
	}
	return nil
}

// RequeueDead reopens one dead item: status back to retry, due immediately.
func (r *OutboxRepo) RequeueDead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE webhook_outbox
		SET status='retry', next_attempt_at=NOW(), dead_at=NULL,
			locked_by=NULL, locked_until=NULL, updated_at=NOW()
		WHERE id=$1 AND status='dead'`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("requeue dead item: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a missing row from a row in the wrong state.
	var status string
	err = r.pool.QueryRow(ctx, `SELECT status FROM webhook_outbox WHERE id=$1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("requeue dead item: %w", err)
	}
	return fmt.Errorf("%w: status is %s", domain.ErrItemNotDead, status)
}

// RequeueDeadBatch reopens up to limit dead items, oldest dead first.
func (r *OutboxRepo) RequeueDeadBatch(ctx context.Context, limit int) (int, error) {
	query := `UPDATE webhook_outbox
		SET status='retry', next_attempt_at=NOW(), dead_at=NULL,
			locked_by=NULL, locked_until=NULL, updated_at=NOW()
		WHERE id IN (
			SELECT id FROM webhook_outbox
			WHERE status='dead'
			ORDER BY dead_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)`

	tag, err := r.pool.Exec(ctx, query, limit)
	if err != nil {
		return 0, fmt.Errorf("requeue dead batch: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Purge deletes rows in the given terminal statuses created before cutoff.
func (r *OutboxRepo) Purge(ctx context.Context, statuses []domain.OutboxStatus, olderThan time.Time) (int64, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `DELETE FROM webhook_outbox WHERE status = ANY($1) AND created_at < $2`
	tag, err := r.pool.Exec(ctx, query, names, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountByStatus returns queue depth per status.
func (r *OutboxRepo) CountByStatus(ctx context.Context) (map[domain.OutboxStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM webhook_outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count outbox by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OutboxStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.OutboxStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanItem(row pgx.Row) (*domain.OutboxItem, error) {
	item := &domain.OutboxItem{}
	var status string
	err := row.Scan(
		&item.ID, &item.UserID, &item.WebhookID, &item.Event,
		&item.Payload, &status, &item.AttemptCount,
		&item.NextAttemptAt, &item.LastAttemptAt, &item.DeliveredAt, &item.DeadAt,
		&item.LastStatusCode, &item.LastError, &item.LockedBy, &item.LockedUntil,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = domain.OutboxStatus(status)
	return item, nil
}
