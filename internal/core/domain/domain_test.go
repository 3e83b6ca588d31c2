package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWebhookSubscription_Matches(t *testing.T) {
	tests := []struct {
		name   string
		active bool
		events []string
		event  string
		want   bool
	}{
		{"empty filter matches everything", true, nil, "session.created", true},
		{"listed event matches", true, []string{"session.created"}, "session.created", true},
		{"unlisted event does not match", true, []string{"session.created"}, "session.updated", false},
		{"inactive never matches", false, nil, "session.created", false},
		{"multi-event filter", true, []string{"drill.reviewed", "quest.claimed"}, "quest.claimed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &WebhookSubscription{Active: tt.active, Events: tt.events}
			assert.Equal(t, tt.want, s.Matches(tt.event))
		})
	}
}

func TestWebhookSubscription_HasLegacySecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		keyID  string
		want   bool
	}{
		{"empty key id", "s3cret", "", true},
		{"plain marker", "s3cret", LegacyKeyID, true},
		{"vault key id", "deadbeef", "v1", false},
		{"no secret at all", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &WebhookSubscription{SecretEnc: tt.secret, KeyID: tt.keyID}
			assert.Equal(t, tt.want, s.HasLegacySecret())
		})
	}
}

func TestEventAllowed(t *testing.T) {
	for _, e := range AllowedEvents {
		assert.True(t, EventAllowed(e), e)
	}
	assert.False(t, EventAllowed("session.exploded"))
	assert.False(t, EventAllowed(""))
}

func TestOutboxStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status OutboxStatus
		want   bool
	}{
		{OutboxStatusShadow, true},
		{OutboxStatusPending, false},
		{OutboxStatusProcessing, false},
		{OutboxStatusRetry, false},
		{OutboxStatusSent, true},
		{OutboxStatusDead, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestOutboxStatus_CanTransition(t *testing.T) {
	legal := []struct{ from, to OutboxStatus }{
		{OutboxStatusPending, OutboxStatusProcessing},
		{OutboxStatusRetry, OutboxStatusProcessing},
		{OutboxStatusProcessing, OutboxStatusSent},
		{OutboxStatusProcessing, OutboxStatusRetry},
		{OutboxStatusProcessing, OutboxStatusDead},
		{OutboxStatusDead, OutboxStatusRetry}, // operator requeue
	}
	for _, e := range legal {
		assert.True(t, e.from.CanTransition(e.to), "%s -> %s", e.from, e.to)
	}

	illegal := []struct{ from, to OutboxStatus }{
		{OutboxStatusShadow, OutboxStatusPending},
		{OutboxStatusShadow, OutboxStatusProcessing},
		{OutboxStatusSent, OutboxStatusRetry},
		{OutboxStatusSent, OutboxStatusProcessing},
		{OutboxStatusPending, OutboxStatusSent},
		{OutboxStatusDead, OutboxStatusProcessing},
		{OutboxStatusRetry, OutboxStatusDead},
	}
	for _, e := range illegal {
		assert.False(t, e.from.CanTransition(e.to), "%s -> %s", e.from, e.to)
	}
}

func TestNewOutboxItem(t *testing.T) {
	userID := uuid.New()
	webhookID := uuid.New()
	payload := json.RawMessage(`{"session_id":"abc"}`)

	item := NewOutboxItem(userID, &webhookID, "session.created", payload, OutboxStatusPending)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, userID, item.UserID)
	assert.Equal(t, &webhookID, item.WebhookID)
	assert.Equal(t, "session.created", item.Event)
	assert.Equal(t, OutboxStatusPending, item.Status)
	assert.Zero(t, item.AttemptCount)
	assert.WithinDuration(t, time.Now().UTC(), item.NextAttemptAt, time.Second)
	assert.Nil(t, item.DeliveredAt)
	assert.Nil(t, item.LockedBy)
}

func TestOutboxItem_Claimable(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	worker := "worker-1"

	tests := []struct {
		name string
		item OutboxItem
		want bool
	}{
		{"pending due", OutboxItem{Status: OutboxStatusPending, NextAttemptAt: past}, true},
		{"pending not yet due", OutboxItem{Status: OutboxStatusPending, NextAttemptAt: future}, false},
		{"retry due", OutboxItem{Status: OutboxStatusRetry, NextAttemptAt: past}, true},
		{"processing with live lock", OutboxItem{Status: OutboxStatusProcessing, LockedBy: &worker, LockedUntil: &future}, false},
		{"processing with expired lock", OutboxItem{Status: OutboxStatusProcessing, LockedBy: &worker, LockedUntil: &past}, true},
		{"shadow never claimable", OutboxItem{Status: OutboxStatusShadow, NextAttemptAt: past}, false},
		{"sent never claimable", OutboxItem{Status: OutboxStatusSent, NextAttemptAt: past}, false},
		{"dead never claimable", OutboxItem{Status: OutboxStatusDead, NextAttemptAt: past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Claimable(now))
		})
	}
}
