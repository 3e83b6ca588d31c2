package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"webhook-outbox/internal/core/domain"

	"github.com/google/uuid"
)

// OutboxStore is an in-process ports.OutboxRepository for development and
// tests. A single mutex serializes every mutation, which gives the same
// claim exclusivity the SQL store gets from row locks, but only within one
// process; it must never back more than one worker process.
type OutboxStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.OutboxItem
	now   func() time.Time
}

// NewOutboxStore creates an empty in-memory outbox.
func NewOutboxStore() *OutboxStore {
	return &OutboxStore{
		items: make(map[uuid.UUID]*domain.OutboxItem),
		now:   time.Now,
	}
}

// Insert stores a copy of the item.
func (s *OutboxStore) Insert(_ context.Context, item *domain.OutboxItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

// GetByID returns a copy of the item, or nil, nil when absent.
func (s *OutboxStore) GetByID(_ context.Context, id uuid.UUID) (*domain.OutboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

// ClaimBatch assigns up to batchSize claimable items to workerID, oldest-due
// first. Claim and lock happen under one critical section, so two concurrent
// claimers can never receive the same item.
func (s *OutboxStore) ClaimBatch(_ context.Context, workerID string, batchSize int, lockTTL time.Duration) ([]domain.OutboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var due []*domain.OutboxItem
	for _, item := range s.items {
		if item.Claimable(now) {
			due = append(due, item)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].NextAttemptAt.Equal(due[j].NextAttemptAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].NextAttemptAt.Before(due[j].NextAttemptAt)
	})
	if len(due) > batchSize {
		due = due[:batchSize]
	}

	until := now.Add(lockTTL)
	claimed := make([]domain.OutboxItem, 0, len(due))
	for _, item := range due {
		item.Status = domain.OutboxStatusProcessing
		item.LockedBy = &workerID
		item.LockedUntil = &until
		item.UpdatedAt = now
		claimed = append(claimed, *item)
	}
	return claimed, nil
}

// MarkSent finalizes a delivered item and releases its lock.
func (s *OutboxStore) MarkSent(_ context.Context, id uuid.UUID, statusCode int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.processing(id)
	if err != nil {
		return err
	}
	now := s.now()
	item.Status = domain.OutboxStatusSent
	item.AttemptCount++
	item.LastStatusCode = &statusCode
	item.LastError = nil
	item.LastAttemptAt = &now
	item.DeliveredAt = &now
	s.release(item, now)
	return nil
}

// MarkRetry records a failed attempt and schedules the next one.
func (s *OutboxStore) MarkRetry(_ context.Context, id uuid.UUID, attemptCount int, nextAttemptAt time.Time, statusCode *int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.processing(id)
	if err != nil {
		return err
	}
	now := s.now()
	item.Status = domain.OutboxStatusRetry
	item.AttemptCount = attemptCount
	item.NextAttemptAt = nextAttemptAt
	item.LastStatusCode = statusCode
	item.LastError = &lastError
	item.LastAttemptAt = &now
	s.release(item, now)
	return nil
}

// MarkDead dead-letters an item, recording the final attempt's outcome.
func (s *OutboxStore) MarkDead(_ context.Context, id uuid.UUID, attemptCount int, statusCode *int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.processing(id)
	if err != nil {
		return err
	}
	now := s.now()
	item.Status = domain.OutboxStatusDead
	item.AttemptCount = attemptCount
	item.LastStatusCode = statusCode
	item.LastError = &lastError
	item.LastAttemptAt = &now
	item.DeadAt = &now
	s.release(item, now)
	return nil
}

// RequeueDead reopens one dead item to retry, due immediately.
func (s *OutboxStore) RequeueDead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Status != domain.OutboxStatusDead {
		return domain.ErrItemNotDead
	}
	s.reopen(item, s.now())
	return nil
}

// RequeueDeadBatch reopens up to limit dead items, oldest dead first.
func (s *OutboxStore) RequeueDeadBatch(_ context.Context, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dead []*domain.OutboxItem
	for _, item := range s.items {
		if item.Status == domain.OutboxStatusDead {
			dead = append(dead, item)
		}
	}
	sort.Slice(dead, func(i, j int) bool {
		return dead[i].DeadAt.Before(*dead[j].DeadAt)
	})
	if len(dead) > limit {
		dead = dead[:limit]
	}

	now := s.now()
	for _, item := range dead {
		s.reopen(item, now)
	}
	return len(dead), nil
}

// Purge deletes items in the given terminal statuses created before cutoff.
func (s *OutboxStore) Purge(_ context.Context, statuses []domain.OutboxStatus, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := make(map[domain.OutboxStatus]bool, len(statuses))
	for _, st := range statuses {
		match[st] = true
	}

	var removed int64
	for id, item := range s.items {
		if match[item.Status] && item.CreatedAt.Before(olderThan) {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

// CountByStatus returns queue depth per status.
func (s *OutboxStore) CountByStatus(_ context.Context) (map[domain.OutboxStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[domain.OutboxStatus]int64)
	for _, item := range s.items {
		counts[item.Status]++
	}
	return counts, nil
}

func (s *OutboxStore) processing(id uuid.UUID) (*domain.OutboxItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if item.Status != domain.OutboxStatusProcessing {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *OutboxStore) release(item *domain.OutboxItem, now time.Time) {
	item.LockedBy = nil
	item.LockedUntil = nil
	item.UpdatedAt = now
}

func (s *OutboxStore) reopen(item *domain.OutboxItem, now time.Time) {
	item.Status = domain.OutboxStatusRetry
	item.NextAttemptAt = now
	item.DeadAt = nil
	s.release(item, now)
}
