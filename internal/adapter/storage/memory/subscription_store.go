package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"webhook-outbox/internal/core/domain"

	"github.com/google/uuid"
)

// SubscriptionStore is an in-process ports.SubscriptionRepository paired with
// OutboxStore for development mode.
type SubscriptionStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*domain.WebhookSubscription
}

// NewSubscriptionStore creates an empty in-memory subscription store.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{subs: make(map[uuid.UUID]*domain.WebhookSubscription)}
}

// Put stores a copy of the subscription, replacing any previous version.
func (s *SubscriptionStore) Put(sub *domain.WebhookSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subs[sub.ID] = &cp
}

// GetByID returns a copy of the subscription, or nil, nil when absent.
func (s *SubscriptionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.WebhookSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

// ListActiveByUser returns the user's active subscriptions, oldest first.
func (s *SubscriptionStore) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]domain.WebhookSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.WebhookSubscription
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.Active {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateSecret re-stores a subscription secret under a new vault key id.
func (s *SubscriptionStore) UpdateSecret(_ context.Context, id uuid.UUID, secretEnc, keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	sub.SecretEnc = secretEnc
	sub.KeyID = keyID
	sub.UpdatedAt = time.Now().UTC()
	return nil
}
