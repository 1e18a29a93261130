package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/buildsync/pkg/adapters/memory"
	"github.com/aretw0/buildsync/pkg/persistence/middleware"
	"github.com/aretw0/buildsync/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.KeyValueStore, cfg middleware.EncryptionConfig) ports.KeyValueStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(next, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunKeyValueStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, secure.Store(ctx, "data/3.18/tree/3_18.json", []byte(`{"nodes":{"1":{}}}`)))

	raw, err := underlying.Load(ctx, "data/3.18/tree/3_18.json")
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("nodes")), "value must be hidden in the underlying store")

	plain, err := secure.Load(ctx, "data/3.18/tree/3_18.json")
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":{"1":{}}}`, string(plain))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	old := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, old.Store(ctx, "k", []byte("encrypted-with-old-key")))

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	got, err := rotated.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-with-old-key", string(got))

	wrong := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = wrong.Load(ctx, "k")
	assert.ErrorIs(t, err, middleware.ErrDecrypt, "a store without the old key cannot read it")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
