package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/aretw0/buildsync/pkg/ports"
)

// ErrInvalidKey is returned for keys that are not 32 bytes long.
var ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")

// ErrDecrypt is returned when no configured key opens a stored value.
var ErrDecrypt = errors.New("decryption failed with all available keys")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next ports.KeyValueStore
	// aeads holds the active key first, then the fallbacks in order.
	aeads []cipher.AEAD
}

// NewEncryptionMiddleware creates a middleware that seals values with AES-GCM.
// Keys stay in clear text so that Exists and deletes pass straight through.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	keys := append([][]byte{config.ActiveKey}, config.FallbackKeys...)
	aeads := make([]cipher.AEAD, 0, len(keys))
	for i, key := range keys {
		aead, err := newAEAD(key)
		if err != nil {
			if i == 0 {
				return nil, err
			}
			return nil, fmt.Errorf("fallback key %d: %w", i-1, err)
		}
		aeads = append(aeads, aead)
	}

	return func(next ports.KeyValueStore) ports.KeyValueStore {
		return &encryptionMiddleware{next: next, aeads: aeads}
	}, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Store seals value under the active key. A nil value is a delete and is not sealed.
func (m *encryptionMiddleware) Store(ctx context.Context, key string, value []byte) error {
	if value == nil {
		return m.next.Store(ctx, key, nil)
	}

	active := m.aeads[0]
	nonce := make([]byte, active.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return m.next.Store(ctx, key, active.Seal(nonce, nonce, value, nil))
}

// Load opens the stored value with the first key that fits.
func (m *encryptionMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	sealed, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) == 0 {
		return sealed, nil
	}

	for _, aead := range m.aeads {
		size := aead.NonceSize()
		if len(sealed) < size {
			continue
		}
		plain, err := aead.Open(nil, sealed[:size], sealed[size:], nil)
		if err != nil {
			continue
		}
		if plain == nil {
			plain = []byte{}
		}
		return plain, nil
	}
	return nil, fmt.Errorf("%s: %w", key, ErrDecrypt)
}

func (m *encryptionMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	return m.next.Exists(ctx, key)
}
