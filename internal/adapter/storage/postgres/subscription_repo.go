package postgres

import (
	"context"
	"errors"
	"fmt"

	"webhook-outbox/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubscriptionRepo implements ports.SubscriptionRepository.
type SubscriptionRepo struct {
	pool Pool
}

// NewSubscriptionRepo creates a new SubscriptionRepo.
func NewSubscriptionRepo(pool Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

// GetByID fetches a subscription by its UUID. Returns nil, nil when absent.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookSubscription, error) {
	query := `SELECT id, user_id, url, events, secret_enc, key_id, active, created_at, updated_at
		FROM webhook_subscriptions WHERE id = $1`

	s := &domain.WebhookSubscription{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.URL, &s.Events,
		&s.SecretEnc, &s.KeyID, &s.Active,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription by id: %w", err)
	}
	return s, nil
}

// ListActiveByUser fetches the user's active subscriptions.
func (r *SubscriptionRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.WebhookSubscription, error) {
	query := `SELECT id, user_id, url, events, secret_enc, key_id, active, created_at, updated_at
		FROM webhook_subscriptions
		WHERE user_id = $1 AND active
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for user: %w", err)
	}
	defer rows.Close()

	var subs []domain.WebhookSubscription
	for rows.Next() {
		var s domain.WebhookSubscription
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.URL, &s.Events,
			&s.SecretEnc, &s.KeyID, &s.Active,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// UpdateSecret re-stores a subscription secret under a new vault key id.
func (r *SubscriptionRepo) UpdateSecret(ctx context.Context, id uuid.UUID, secretEnc, keyID string) error {
	query := `UPDATE webhook_subscriptions
		SET secret_enc=$1, key_id=$2, updated_at=NOW()
		WHERE id=$3`
	tag, err := r.pool.Exec(ctx, query, secretEnc, keyID, id)
	if err != nil {
		return fmt.Errorf("update subscription secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update subscription secret: no subscription %s", id)
	}
	return nil
}
