package session

import (
	"context"
	"time"

	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
)

// Tick recomputes output for the current build. reason is only a label.
func (s *Session) Tick(ctx context.Context, reason string) error {
	return s.ready(ctx, func(ctx context.Context) error {
		s.tick(ctx, reason)
		return nil
	})
}

// tick runs on the session goroutine.
func (s *Session) tick(ctx context.Context, reason string) {
	start := time.Now()
	result := domain.TickSkipped

	defer func() {
		elapsed := time.Since(start)
		s.logger.Debug("tick", "reason", reason, "result", result, "elapsed", elapsed)
		if s.hooks.OnTick != nil {
			s.hooks.OnTick(ctx, &domain.TickEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTick},
				Reason:    reason,
				Result:    result,
				Duration:  elapsed,
			})
		}
	}()

	if s.build == nil {
		return
	}

	calc := s.engine.NewCalculator(s.build)
	if calc == nil {
		return
	}

	env := calc.BuildOutput(ctx, domain.ModeMain)
	if env == nil {
		return
	}
	for _, msg := range env.DebugErrors {
		s.logger.Debug("engine reported", "reason", reason, "err", msg)
	}
	if !env.Computable() {
		return
	}

	if s.callback != nil {
		s.callback(domain.Outputs{
			Output:      env.Player.Output,
			OutputTable: env.Player.OutputTable,
			SkillFlags:  env.Player.MainSkill.SkillFlags,
		})
	}
	result = domain.TickDelivered
}

// sync pushes a handle to the current build into the sync target.
// The handle is reused until the build is replaced.
func (s *Session) sync(ctx context.Context) {
	if s.target == nil || s.build == nil {
		return
	}

	if s.buildRef.IsZero() || s.refBuild != s.build {
		if !s.buildRef.IsZero() {
			s.registry.Release(s.buildRef.ID())
		}
		s.buildRef = boundary.Proxy(s, s.build)
		s.refBuild = s.build
		s.registry.Register(s.buildRef)
	}

	s.target.Set(s.buildRef)
	s.logger.Debug("build synced", "build_id", s.buildRef.ID())

	if s.hooks.OnSync != nil {
		s.hooks.OnSync(ctx, &domain.SyncEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSync},
			HandleID:  s.buildRef.ID().String(),
		})
	}
}
