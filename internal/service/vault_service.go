package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"webhook-outbox/internal/core/domain"
	"webhook-outbox/internal/core/ports"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/argon2"
)

// AESVaultService implements ports.VaultService using AES-256-GCM.
type AESVaultService struct {
	key   []byte // 32-byte key for AES-256
	keyID string
}

// NewAESVaultService creates a vault from a 64-character hex key (32 bytes
// decoded). keyID identifies this key material in subscription rows.
func NewAESVaultService(hexKey, keyID string) (*AESVaultService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding vault key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("vault key must be 32 bytes, got %d", len(key))
	}
	if keyID == "" || keyID == domain.LegacyKeyID {
		return nil, fmt.Errorf("key id %q is reserved", keyID)
	}
	return &AESVaultService{key: key, keyID: keyID}, nil
}

// NewAESVaultServiceFromPassphrase derives the 32-byte key from a passphrase
// and salt using Argon2id, for deployments without key management.
func NewAESVaultServiceFromPassphrase(passphrase, salt, keyID string) (*AESVaultService, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("vault passphrase must not be empty")
	}
	if len(salt) < 8 {
		return nil, fmt.Errorf("vault salt must be at least 8 bytes, got %d", len(salt))
	}
	key := argon2.IDKey([]byte(passphrase), []byte(salt), 1, 64*1024, 4, 32)
	return NewAESVaultService(hex.EncodeToString(key), keyID)
}

// KeyID returns the identifier for the current key material.
func (s *AESVaultService) KeyID() string {
	return s.keyID
}

// Encrypt encrypts plaintext using AES-256-GCM.
// Returns hex-encoded string: nonce + ciphertext.
func (s *AESVaultService) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a hex-encoded AES-256-GCM ciphertext.
func (s *AESVaultService) Decrypt(ciphertextHex string) (string, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}

	return string(plaintext), nil
}

// SecretResolver returns the shared secret for a subscription, transparently
// migrating legacy plaintext secrets to the vault on first read.
type SecretResolver struct {
	vault ports.VaultService
	subs  ports.SubscriptionRepository
	log   zerolog.Logger
}

// NewSecretResolver creates a SecretResolver.
func NewSecretResolver(vault ports.VaultService, subs ports.SubscriptionRepository, log zerolog.Logger) *SecretResolver {
	return &SecretResolver{vault: vault, subs: subs, log: log}
}

// Resolve returns the plaintext secret for sub, or "" when none is set.
// A legacy plaintext secret is re-encrypted and persisted under the current
// key id; if that write fails, the failure is logged and the plaintext secret
// is still returned so the delivery can be signed.
func (r *SecretResolver) Resolve(ctx context.Context, sub *domain.WebhookSubscription) (string, error) {
	if sub.SecretEnc == "" {
		return "", nil
	}

	if sub.HasLegacySecret() {
		secret := sub.SecretEnc
		enc, err := r.vault.Encrypt(secret)
		if err != nil {
			r.log.Error().Err(err).Str("webhook_id", sub.ID.String()).Msg("vault: legacy secret re-encryption failed")
			return secret, nil
		}
		if err := r.subs.UpdateSecret(ctx, sub.ID, enc, r.vault.KeyID()); err != nil {
			r.log.Error().Err(err).Str("webhook_id", sub.ID.String()).Msg("vault: legacy secret migration write failed")
			return secret, nil
		}
		r.log.Info().Str("webhook_id", sub.ID.String()).Str("key_id", r.vault.KeyID()).Msg("vault: migrated legacy secret")
		sub.SecretEnc = enc
		sub.KeyID = r.vault.KeyID()
		return secret, nil
	}

	secret, err := r.vault.Decrypt(sub.SecretEnc)
	if err != nil {
		return "", fmt.Errorf("decrypting webhook secret: %w", err)
	}
	return secret, nil
}
