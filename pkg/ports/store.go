package ports

import "context"

// KeyValueStore defines the host storage used by the engine during bootstrap.
// Implementations must be safe for concurrent use with distinct keys.
type KeyValueStore interface {
	// Load returns the value for key, or empty bytes (and no error) when absent.
	Load(ctx context.Context, key string) ([]byte, error)

	// Store writes value under key. A nil value removes the key.
	Store(ctx context.Context, key string, value []byte) error

	// Exists reports whether key holds a value.
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageBridge is the three-function form of a KeyValueStore handed to the engine.
type StorageBridge struct {
	Load   func(ctx context.Context, key string) ([]byte, error)
	Store  func(ctx context.Context, key string, value []byte) error
	Exists func(ctx context.Context, key string) (bool, error)
}

// BridgeFrom adapts a KeyValueStore to a StorageBridge.
func BridgeFrom(kv KeyValueStore) StorageBridge {
	return StorageBridge{
		Load:   kv.Load,
		Store:  kv.Store,
		Exists: kv.Exists,
	}
}

// Complete reports whether all three operations are wired.
func (b StorageBridge) Complete() bool {
	return b.Load != nil && b.Store != nil && b.Exists != nil
}
