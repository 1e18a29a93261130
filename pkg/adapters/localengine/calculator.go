package localengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/buildsync/pkg/domain"
)

// calculator produces a structural summary of a build.
type calculator struct {
	engine *Engine
	build  *domain.Build
}

// BuildOutput summarizes the build. It returns nil when the main socket group
// does not resolve and an environment without a main skill when the group
// holds no usable active gem.
func (c *calculator) BuildOutput(ctx context.Context, mode domain.OutputMode) *domain.Environment {
	if ctx.Err() != nil || mode != domain.ModeMain {
		return nil
	}

	group := c.build.MainGroup()
	if group == nil {
		return nil
	}

	env := &domain.Environment{
		Player: &domain.Actor{
			Output:      c.output(group),
			OutputTable: c.outputTable(group),
		},
	}

	active, supports, errs := c.resolveGroup(group)
	env.DebugErrors = errs
	if active == nil {
		env.DebugErrors = append(env.DebugErrors, fmt.Sprintf("socket group %q has no active skill", group.Label))
		return env
	}

	flags := make(map[string]bool)
	for _, tag := range active.Tags {
		flags[strings.ToLower(tag)] = true
	}
	if len(supports) > 0 {
		flags["supported"] = true
	}

	env.Player.MainSkill = &domain.ActiveSkill{
		Name:       active.Name,
		SkillFlags: flags,
	}
	env.Player.Output["MainSkill"] = active.Name
	env.Player.Output["SupportCount"] = len(supports)
	return env
}

func (c *calculator) output(group *domain.SocketGroup) map[string]any {
	b := c.build
	enabled := 0
	levels := 0
	for _, g := range group.Gems {
		if g.Enabled {
			enabled++
			levels += g.Level
		}
	}
	return map[string]any{
		"Level":           b.Character.Level,
		"ClassName":       b.Character.ClassName,
		"AscendClassName": b.Character.AscendClassName,
		"AllocatedNodes":  len(b.Character.PassiveNodes),
		"ConfigInputs":    len(b.Config.Inputs),
		"MainGroupGems":   len(group.Gems),
		"EnabledGems":     enabled,
		"TotalGemLevel":   levels,
	}
}

func (c *calculator) outputTable(group *domain.SocketGroup) map[string]any {
	config := make(map[string]any, len(c.build.Config.Inputs))
	for _, in := range c.build.Config.Inputs {
		config[in.Name] = in.Value()
	}
	gems := make([]string, 0, len(group.Gems))
	for _, g := range group.Gems {
		gems = append(gems, g.NameSpec)
	}
	return map[string]any{
		"Config":    config,
		"MainGroup": gems,
	}
}

// resolveGroup picks the MainActiveSkill-th enabled active gem (1-based) and
// the enabled supports. Gems missing from the catalogue are reported and skipped.
func (c *calculator) resolveGroup(group *domain.SocketGroup) (*domain.SkillGem, []domain.SkillGem, []string) {
	var actives, supports []domain.SkillGem
	var errs []string

	for _, g := range group.Gems {
		if !g.Enabled {
			continue
		}
		gem, ok := c.engine.gem(g.GemID)
		if !ok {
			gem, ok = c.engine.gem(g.SkillID)
		}
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown gem %q", g.NameSpec))
			continue
		}
		if gem.Support {
			supports = append(supports, gem)
		} else {
			actives = append(actives, gem)
		}
	}

	idx := group.MainActiveSkill - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(actives) {
		return nil, supports, errs
	}
	return &actives[idx], supports, errs
}
