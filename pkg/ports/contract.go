package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKeyValueStoreContract runs a suite of tests to verify that a KeyValueStore
// implementation adheres to the defined interface contract.
func RunKeyValueStoreContract(t *testing.T, store KeyValueStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Store and Load", func(t *testing.T) {
		key := prefix + "/tree/3_18.json"
		err := store.Store(ctx, key, []byte(`{"nodes":{}}`))
		require.NoError(t, err, "Store should not return error")

		got, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, `{"nodes":{}}`, string(got))

		ok, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Load Missing Returns Empty", func(t *testing.T) {
		got, err := store.Load(ctx, prefix+"-missing")
		require.NoError(t, err)
		assert.Empty(t, got)

		ok, err := store.Exists(ctx, prefix+"-missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + "-overwrite"
		require.NoError(t, store.Store(ctx, key, []byte("one")))
		require.NoError(t, store.Store(ctx, key, []byte("two")))

		got, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("Store Nil Removes", func(t *testing.T) {
		key := prefix + "-remove"
		require.NoError(t, store.Store(ctx, key, []byte("value")))
		require.NoError(t, store.Store(ctx, key, nil))

		ok, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "Exists after nil Store should be false")

		// Removing an absent key is not an error
		require.NoError(t, store.Store(ctx, key, nil))
	})

	t.Run("Returned Bytes Are Owned", func(t *testing.T) {
		key := prefix + "-owned"
		value := []byte("abc")
		require.NoError(t, store.Store(ctx, key, value))
		value[0] = 'x'

		got, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})

	t.Run("Concurrent Distinct Keys", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("%s-concurrent-%d", prefix, i)
				assert.NoError(t, store.Store(ctx, key, []byte(key)))
			}(i)
		}
		wg.Wait()

		for i := 0; i < 16; i++ {
			key := fmt.Sprintf("%s-concurrent-%d", prefix, i)
			got, err := store.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, string(got))
		}
	})
}
