package domain

import (
	"time"

	"github.com/google/uuid"
)

// AllowedEvents is the fixed set of event names a subscription may register for.
// Unknown events are rejected when the subscription is created or updated, not
// at enqueue time.
var AllowedEvents = []string{
	"session.created",
	"session.updated",
	"session.deleted",
	"quest.claimed",
	"drill.reviewed",
	"test",
}

// EventAllowed reports whether name is on the subscription event allow-list.
func EventAllowed(name string) bool {
	for _, e := range AllowedEvents {
		if e == name {
			return true
		}
	}
	return false
}

// LegacyKeyID marks a secret stored before encryption-at-rest was introduced.
const LegacyKeyID = "plain"

// WebhookSubscription is a user's outbound integration. The worker only reads
// subscriptions; mutations go through the owning user's API.
type WebhookSubscription struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"` // empty = all events
	SecretEnc string    `json:"-"`      // encrypted shared secret (or plaintext when legacy)
	KeyID     string    `json:"-"`      // vault key identifier; "" or "plain" = legacy plaintext
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Matches reports whether this subscription should receive the given event.
// An empty event filter matches everything.
func (s *WebhookSubscription) Matches(event string) bool {
	if !s.Active {
		return false
	}
	if len(s.Events) == 0 {
		return true
	}
	for _, e := range s.Events {
		if e == event {
			return true
		}
	}
	return false
}

// HasLegacySecret reports whether the stored secret predates the vault and is
// still plaintext at rest.
func (s *WebhookSubscription) HasLegacySecret() bool {
	return s.SecretEnc != "" && (s.KeyID == "" || s.KeyID == LegacyKeyID)
}
