package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/ports"
)

// Boot loads the engine from image and wires its logging and disk cache.
// cb receives the output of every successful tick; target receives the build
// handle after every change. Either may be nil.
//
// Boot may be called once. A failed Boot leaves the session Uninitialized so it
// can be retried.
func (s *Session) Boot(ctx context.Context, image []byte, cb ports.OutputCallback, target ports.SyncTarget) error {
	transition := context.WithoutCancel(ctx)

	err := s.Do(transition, func() error {
		if s.Lifecycle() != domain.Uninitialized {
			return domain.ErrAlreadyBooted
		}
		s.setLifecycle(domain.Booting)
		return nil
	})
	if err != nil {
		return err
	}

	start := time.Now()
	engine, bootErr := s.startEngine(ctx, image)

	err = s.Do(transition, func() error {
		if bootErr != nil {
			s.setLifecycle(domain.Uninitialized)
			return nil
		}
		s.engine = engine
		s.callback = cb
		s.target = target
		s.setLifecycle(domain.Ready)
		return nil
	})
	if bootErr != nil {
		s.logger.Error("session boot failed", "err", bootErr, "elapsed", time.Since(start))
		return bootErr
	}
	if err != nil {
		return err
	}

	s.logger.Info("session booted", "elapsed", time.Since(start))
	return nil
}

func (s *Session) startEngine(ctx context.Context, image []byte) (ports.Engine, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("session: no engine loader")
	}

	engine, err := s.loader.Load(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine: %w", err)
	}
	if engine == nil {
		return nil, fmt.Errorf("failed to load engine: loader returned no engine")
	}

	engine.InitLogging(s.verboseEngine)

	if err := engine.InitializeDiskCache(ctx, s.diskCache()); err != nil {
		return nil, fmt.Errorf("failed to initialize disk cache: %w", err)
	}
	return engine, nil
}

// diskCache returns the bridge handed to the engine. Missing keys always load
// as empty bytes, whatever the backing store returns.
func (s *Session) diskCache() ports.StorageBridge {
	var bridge ports.StorageBridge
	switch {
	case s.bridge != nil:
		bridge = *s.bridge
	case s.storage != nil:
		bridge = ports.BridgeFrom(s.storage)
	}

	load := bridge.Load
	if load != nil {
		bridge.Load = func(ctx context.Context, key string) ([]byte, error) {
			data, err := load(ctx, key)
			if err != nil {
				return nil, err
			}
			if data == nil {
				data = []byte{}
			}
			return data, nil
		}
	}

	store := bridge.Store
	if store != nil {
		bridge.Store = func(ctx context.Context, key string, value []byte) error {
			s.logger.Debug("disk cache store", "key", key, "bytes", len(value))
			return store(ctx, key, value)
		}
	}
	return bridge
}

// LoadInitialData loads the engine's bulk data for the configured data version.
// It runs outside the session goroutine; engine failures are logged, not returned.
func (s *Session) LoadInitialData(ctx context.Context, progress func(string)) error {
	var engine ports.Engine
	err := s.ready(ctx, func(context.Context) error {
		engine = s.engine
		return nil
	})
	if err != nil {
		return err
	}

	start := time.Now()
	if err := engine.InitializeAll(ctx, s.dataVersion, progress); err != nil {
		s.logger.Error("failed to load initial data", "data_version", s.dataVersion, "err", err, "elapsed", time.Since(start))
		return nil
	}

	s.logger.Info("initial data loaded", "data_version", s.dataVersion, "elapsed", time.Since(start))
	return nil
}
