package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/buildsync/pkg/adapters/sqlite"
	"github.com/aretw0/buildsync/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunKeyValueStoreContract(t, openTestStore(t))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Store(ctx, "data/3.18/tree/3_18", []byte(`{"nodes":{}}`)))
	require.NoError(t, first.Close())

	second, err := sqlite.Open(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Load(ctx, "data/3.18/tree/3_18")
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":{}}`, string(got))
}

func TestSQLiteStore_Keys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "b", []byte("2")))
	require.NoError(t, store.Store(ctx, "a", []byte("1")))
	require.NoError(t, store.Store(ctx, "c", nil))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestSQLiteStore_EmptyValueIsPresent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "empty", []byte{}))

	ok, err := store.Exists(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Load(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
