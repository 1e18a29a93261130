package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/buildsync/internal/logging"
	"github.com/aretw0/buildsync/pkg/adapters/memory"
	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/ports"
)

// Session owns one build and serializes every operation on it.
type Session struct {
	loader        ports.EngineLoader
	schema        ports.ConfigSchema
	storage       ports.KeyValueStore
	bridge        *ports.StorageBridge
	hooks         domain.SessionHooks
	logger        *slog.Logger
	dataVersion   string
	verboseEngine bool

	registry  *boundary.Registry
	lifecycle atomic.Int32

	requests  chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the loop goroutine.
	engine   ports.Engine
	callback ports.OutputCallback
	target   ports.SyncTarget
	build    *domain.Build
	buildRef boundary.Ref[*domain.Build]
	refBuild *domain.Build
	gemsRef  boundary.Ref[[]domain.SkillGem]
	// gemsLoaded is set once gemsRef holds a non-empty catalogue.
	gemsLoaded bool
}

var _ boundary.Owner = (*Session)(nil)

// New creates a Session and starts its goroutine. Call Close to stop it.
func New(loader ports.EngineLoader, opts ...Option) *Session {
	s := &Session{
		loader:      loader,
		storage:     memory.NewStore(),
		logger:      logging.NewNop(),
		dataVersion: domain.DataVersion,
		registry:    boundary.NewRegistry(),
		requests:    make(chan func()),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.loop()
	return s
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case req := <-s.requests:
			req()
		case <-s.quit:
			return
		}
	}
}

// Do runs fn on the session goroutine and returns its error.
// A caller whose ctx ends stops waiting, but fn still runs once dispatched.
// fn must not call Do itself.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result := make(chan error, 1)
	req := func() {
		result <- s.run(fn)
	}

	select {
	case s.requests <- req:
	case <-s.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session request panicked", "panic", r)
			err = fmt.Errorf("session: request panicked: %v", r)
		}
	}()
	return fn()
}

// ready runs fn on the session goroutine once the engine is loaded.
// The closure sees a context that is not cancelled with the caller's.
func (s *Session) ready(ctx context.Context, fn func(ctx context.Context) error) error {
	inner := context.WithoutCancel(ctx)
	return s.Do(ctx, func() error {
		if s.Lifecycle() != domain.Ready {
			return domain.ErrNotReady
		}
		return fn(inner)
	})
}

// Lifecycle returns the current boot state.
func (s *Session) Lifecycle() domain.Lifecycle {
	return domain.Lifecycle(s.lifecycle.Load())
}

func (s *Session) setLifecycle(l domain.Lifecycle) {
	s.lifecycle.Store(int32(l))
	s.logger.Debug("session lifecycle changed", "lifecycle", l.String())
}

// Registry returns the registry resolving the handles this session hands out.
func (s *Session) Registry() *boundary.Registry {
	return s.registry
}

// Close stops the session goroutine and releases every handle.
// Later calls fail with domain.ErrSessionClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done

		if !s.buildRef.IsZero() {
			s.registry.Release(s.buildRef.ID())
		}
		if !s.gemsRef.IsZero() {
			s.registry.Release(s.gemsRef.ID())
		}
	})
	return nil
}
