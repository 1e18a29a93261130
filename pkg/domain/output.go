package domain

// OutputMode selects the computation target of a calculator.
type OutputMode string

// ModeMain is the primary computation target.
const ModeMain OutputMode = "MAIN"

// DataVersion is the game data version loaded by default.
const DataVersion = "3.18"

// Outputs is the payload handed to the output callback after a successful tick.
type Outputs struct {
	Output      map[string]any  `json:"Output"`
	OutputTable map[string]any  `json:"OutputTable"`
	SkillFlags  map[string]bool `json:"SkillFlags"`
}

// Environment is the result of one calculator run.
type Environment struct {
	Player      *Actor   `json:"player,omitempty"`
	DebugErrors []string `json:"debug_errors,omitempty"`
}

// Actor holds the computed values of one actor.
type Actor struct {
	Output      map[string]any `json:"output"`
	OutputTable map[string]any `json:"output_table"`
	MainSkill   *ActiveSkill   `json:"main_skill,omitempty"`
}

// ActiveSkill describes the resolved main skill of an actor.
type ActiveSkill struct {
	Name       string          `json:"name"`
	SkillFlags map[string]bool `json:"skill_flags"`
}

// Computable reports whether env carries a usable player and main skill.
func (env *Environment) Computable() bool {
	return env != nil && env.Player != nil && env.Player.MainSkill != nil
}

// SkillGem is an entry of the engine's gem catalogue.
type SkillGem struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Support bool     `json:"support" yaml:"support"`
}

// BuildInfo describes the running module and engine.
type BuildInfo struct {
	Version     string            `json:"version"`
	DataVersion string            `json:"data_version"`
	Lifecycle   string            `json:"lifecycle"`
	Engine      map[string]string `json:"engine,omitempty"`
}
