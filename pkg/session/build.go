package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/buildsync/pkg/domain"
)

// ImportBuild decodes and parses code and makes the result the current build.
// On failure the current build is left untouched. Import does not tick.
func (s *Session) ImportBuild(ctx context.Context, code string) error {
	return s.ready(ctx, func(ctx context.Context) error {
		text, err := s.engine.DecodeDecompress(code)
		if err != nil {
			return tag(domain.ErrDecode, err)
		}

		build, err := s.engine.ParseBuildStr(text)
		if err != nil {
			return tag(domain.ErrParse, err)
		}
		if build == nil {
			return fmt.Errorf("%w: engine returned no build", domain.ErrParse)
		}

		s.build = build
		s.logger.Info("build imported",
			"class", build.Character.ClassName,
			"level", build.Character.Level,
			"nodes", len(build.Character.PassiveNodes),
		)
		s.sync(ctx)
		return nil
	})
}

// tag wraps err with sentinel unless it already carries it.
func tag(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// SetConfigOption stores value under key, or removes the input when value is
// the option's inert default. Either way the build is synced and ticked.
// Without a current build the call does nothing.
func (s *Session) SetConfigOption(ctx context.Context, key string, value any) error {
	return s.ready(ctx, func(ctx context.Context) error {
		if s.build == nil {
			return nil
		}

		var (
			opt domain.ConfigOption
			ok  bool
		)
		if s.schema != nil {
			opt, ok = s.schema.Lookup(key)
		}
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownConfigOption, key)
		}

		if opt.IsInert(value) {
			s.build.RemoveConfigOption(key)
			s.configChanged(ctx, key, "remove")
			s.sync(ctx)
			s.tick(ctx, "SetConfigOption: remove")
			return nil
		}

		input, err := domain.NewInput(key, value)
		if err != nil {
			return err
		}
		s.build.SetConfigOption(input)
		s.configChanged(ctx, key, "change")
		s.sync(ctx)
		s.tick(ctx, "SetConfigOption: change")
		return nil
	})
}

func (s *Session) configChanged(ctx context.Context, key, action string) {
	s.logger.Debug("config option updated", "key", key, "action", action)
	if s.hooks.OnConfig != nil {
		s.hooks.OnConfig(ctx, &domain.ConfigEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventConfig},
			Key:       key,
			Action:    action,
		})
	}
}

// GetConfigOption returns the stored value of name. ok is false when the build
// has no such input or there is no build.
func (s *Session) GetConfigOption(ctx context.Context, name string) (value any, ok bool, err error) {
	err = s.ready(ctx, func(context.Context) error {
		if s.build == nil {
			return nil
		}
		var input domain.Input
		input, ok = s.build.ConfigOption(name)
		if ok {
			value = input.Value()
		}
		return nil
	})
	return value, ok, err
}

// mutate applies fn to the current build, then syncs and ticks with reason.
// Without a current build it does nothing.
func (s *Session) mutate(ctx context.Context, reason string, fn func(b *domain.Build)) error {
	return s.ready(ctx, func(ctx context.Context) error {
		if s.build == nil {
			return nil
		}
		fn(s.build)
		s.sync(ctx)
		s.tick(ctx, reason)
		return nil
	})
}

// SetMainSocketGroup selects the socket group whose main skill is computed.
func (s *Session) SetMainSocketGroup(ctx context.Context, mainSocketGroup int) error {
	return s.mutate(ctx, "SetMainSocketGroup", func(b *domain.Build) {
		b.SetMainSocketGroup(mainSocketGroup)
	})
}

func (s *Session) SetClass(ctx context.Context, class string) error {
	return s.mutate(ctx, "SetClass", func(b *domain.Build) {
		b.SetClass(class)
	})
}

func (s *Session) SetAscendancy(ctx context.Context, ascendancy string) error {
	return s.mutate(ctx, "SetAscendancy", func(b *domain.Build) {
		b.SetAscendancy(ascendancy)
	})
}

func (s *Session) SetLevel(ctx context.Context, level int) error {
	return s.mutate(ctx, "SetLevel", func(b *domain.Build) {
		b.SetLevel(level)
	})
}

// AllocateNodes adds nodeIDs to the allocated passive nodes.
func (s *Session) AllocateNodes(ctx context.Context, nodeIDs []int64) error {
	nodeIDs = slices.Clone(nodeIDs)
	return s.mutate(ctx, "AllocateNode", func(b *domain.Build) {
		b.AllocateNodes(nodeIDs)
	})
}

// DeallocateNodes removes one occurrence of nodeID from the allocated passive nodes.
func (s *Session) DeallocateNodes(ctx context.Context, nodeID int64) error {
	return s.mutate(ctx, "DeallocateNode", func(b *domain.Build) {
		b.DeallocateNodes(nodeID)
	})
}
