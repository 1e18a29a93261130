package session

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/buildsync"
	"github.com/aretw0/buildsync/pkg/boundary"
	"github.com/aretw0/buildsync/pkg/domain"
)

// GetSkillGems returns a handle to the engine's gem catalogue.
// Before data is loaded the handle refers to an empty catalogue and is replaced
// once gems are available; from then on the same handle is returned.
// Every returned handle is registered.
func (s *Session) GetSkillGems(ctx context.Context) (boundary.Ref[[]domain.SkillGem], error) {
	var ref boundary.Ref[[]domain.SkillGem]
	err := s.ready(ctx, func(context.Context) error {
		if s.gemsLoaded {
			ref = s.gemsRef
			return nil
		}

		gems := s.engine.GetSkillGems()
		if len(gems) == 0 && !s.gemsRef.IsZero() {
			ref = s.gemsRef
			return nil
		}

		if !s.gemsRef.IsZero() {
			s.registry.Release(s.gemsRef.ID())
		}
		s.gemsRef = boundary.Proxy(s, gems)
		s.gemsLoaded = len(gems) > 0
		s.registry.Register(s.gemsRef)
		ref = s.gemsRef
		return nil
	})
	return ref, err
}

// GetTree returns the raw passive tree document for version.
func (s *Session) GetTree(ctx context.Context, version string) (string, error) {
	var tree string
	err := s.ready(ctx, func(context.Context) error {
		raw := s.engine.GetRawTree(version)
		if len(raw) == 0 {
			return fmt.Errorf("%w: %q", domain.ErrTreeNotFound, version)
		}
		tree = string(raw)
		return nil
	})
	return tree, err
}

// CalculateTreePath returns the nodes to allocate to connect target to activeNodes.
func (s *Session) CalculateTreePath(ctx context.Context, version string, activeNodes []int64, target int64) ([]int64, error) {
	var path []int64
	err := s.ready(ctx, func(context.Context) error {
		path = slices.Clone(s.engine.CalculateTreePath(version, activeNodes, target))
		return nil
	})
	return path, err
}

// BuildInfo describes the module and engine. It is available in every lifecycle state.
func (s *Session) BuildInfo(ctx context.Context) (domain.BuildInfo, error) {
	info := domain.BuildInfo{
		Version:     buildsync.Version,
		DataVersion: s.dataVersion,
	}
	err := s.Do(ctx, func() error {
		info.Lifecycle = s.Lifecycle().String()
		if s.engine != nil {
			info.Engine = maps.Clone(s.engine.Info())
		}
		return nil
	})
	return info, err
}

// CurrentBuild returns a copy of the current build, or nil when there is none.
func (s *Session) CurrentBuild(ctx context.Context) (*domain.Build, error) {
	var build *domain.Build
	err := s.ready(ctx, func(context.Context) error {
		build = s.build.Clone()
		return nil
	})
	return build, err
}
