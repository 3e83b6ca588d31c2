package dto

import (
	"encoding/json"
	"time"

	"webhook-outbox/internal/core/domain"

	"github.com/google/uuid"
)

// OutboxItemResponse is the operator view of one outbox item. The payload is
// included verbatim; secrets never appear here.
type OutboxItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	WebhookID      *uuid.UUID      `json:"webhook_id,omitempty"`
	Event          string          `json:"event"`
	Payload        json.RawMessage `json:"payload"`
	Status         string          `json:"status"`
	AttemptCount   int             `json:"attempt_count"`
	NextAttemptAt  time.Time       `json:"next_attempt_at"`
	LastAttemptAt  *time.Time      `json:"last_attempt_at,omitempty"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	DeadAt         *time.Time      `json:"dead_at,omitempty"`
	LastStatusCode *int            `json:"last_status_code,omitempty"`
	LastError      *string         `json:"last_error,omitempty"`
	LockedBy       *string         `json:"locked_by,omitempty"`
	LockedUntil    *time.Time      `json:"locked_until,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// FromOutboxItem maps a domain item into its response form.
func FromOutboxItem(item *domain.OutboxItem) OutboxItemResponse {
	return OutboxItemResponse{
		ID:             item.ID,
		UserID:         item.UserID,
		WebhookID:      item.WebhookID,
		Event:          item.Event,
		Payload:        item.Payload,
		Status:         string(item.Status),
		AttemptCount:   item.AttemptCount,
		NextAttemptAt:  item.NextAttemptAt,
		LastAttemptAt:  item.LastAttemptAt,
		DeliveredAt:    item.DeliveredAt,
		DeadAt:         item.DeadAt,
		LastStatusCode: item.LastStatusCode,
		LastError:      item.LastError,
		LockedBy:       item.LockedBy,
		LockedUntil:    item.LockedUntil,
		CreatedAt:      item.CreatedAt,
	}
}

// StatsResponse reports queue depth per status.
type StatsResponse struct {
	Counts map[string]int64 `json:"counts"`
}

// RequeueBatchResponse reports how many dead items were reopened.
type RequeueBatchResponse struct {
	Requeued int `json:"requeued"`
}

// PurgeRequest selects terminal rows to delete.
type PurgeRequest struct {
	Statuses      []string `json:"statuses" binding:"required,min=1"`
	OlderThanDays int      `json:"older_than_days" binding:"required,min=1"`
}

// PurgeResponse reports how many rows were removed.
type PurgeResponse struct {
	Purged int64 `json:"purged"`
}
