package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VaultService encrypts per-webhook shared secrets at rest (AES-256-GCM).
type VaultService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	// KeyID identifies the key material the vault currently encrypts with.
	KeyID() string
}

// SignatureService handles HMAC-SHA256 signing of delivery bodies.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TargetValidator rejects webhook URLs that would let a delivery reach
// loopback, private, or link-local addresses, and enforces HTTPS-only
// targets outside development.
type TargetValidator interface {
	Validate(ctx context.Context, rawURL string) error
}

// DeliveryResult is the structured outcome of one delivery attempt. Err is a
// short description when the attempt failed; StatusCode is set whenever an
// HTTP response was received, 2xx or not.
type DeliveryResult struct {
	OK         bool
	StatusCode *int
	Err        string
}

// DeliveryClient performs the signed HTTP POST to a single webhook target.
// Send never panics and never returns a transport error to the caller; all
// failures are reported through the result.
type DeliveryClient interface {
	Send(ctx context.Context, url, event string, payload json.RawMessage, secret string) DeliveryResult
}

// EnqueueService is the single entrypoint producers call when a domain event
// occurs. webhookID, when non-nil, restricts delivery to that subscription.
// It returns the number of outbox rows written (0 in legacy mode).
type EnqueueService interface {
	Enqueue(ctx context.Context, userID uuid.UUID, event string, payload json.RawMessage, webhookID *uuid.UUID) (int, error)
}

// DedupeStore suppresses duplicate enqueues inside a time window.
type DedupeStore interface {
	// Acquire returns true when the key was not seen within ttl and is now
	// recorded, false when a duplicate arrived inside the window.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// TokenService validates the bearer tokens the operator API accepts.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (string, error) // returns the subject
}
