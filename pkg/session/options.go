package session

import (
	"log/slog"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/ports"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithStorage sets the key/value store handed to the engine's disk cache.
func WithStorage(kv ports.KeyValueStore) Option {
	return func(s *Session) {
		s.storage = kv
	}
}

// WithBridge hands the engine an explicit storage bridge. It takes precedence over WithStorage.
func WithBridge(bridge ports.StorageBridge) Option {
	return func(s *Session) {
		s.bridge = &bridge
	}
}

// WithSchema sets the config option descriptors used by SetConfigOption.
func WithSchema(schema ports.ConfigSchema) Option {
	return func(s *Session) {
		s.schema = schema
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.SessionHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithDataVersion overrides the data version loaded by LoadInitialData.
func WithDataVersion(version string) Option {
	return func(s *Session) {
		s.dataVersion = version
	}
}

// WithVerboseEngine enables the engine's own diagnostics at boot.
func WithVerboseEngine(verbose bool) Option {
	return func(s *Session) {
		s.verboseEngine = verbose
	}
}
