package domain

import (
	"encoding/xml"
	"slices"
)

// Build is the mutable root entity of a session.
// Its layout mirrors the exported build XML so that parsers can decode straight into it.
type Build struct {
	XMLName   xml.Name  `xml:"PathOfBuilding" json:"-"`
	Character Character `xml:"Build" json:"character"`
	Skills    Skills    `xml:"Skills" json:"skills"`
	Tree      Tree      `xml:"Tree" json:"tree"`
	Config    Config    `xml:"Config" json:"config"`
}

// Character holds the class, level and selection fields of a build.
type Character struct {
	Level           int    `xml:"level,attr" json:"level"`
	ClassName       string `xml:"className,attr" json:"class_name"`
	AscendClassName string `xml:"ascendClassName,attr" json:"ascend_class_name"`
	MainSocketGroup int    `xml:"mainSocketGroup,attr" json:"main_socket_group"`
	Bandit          string `xml:"bandit,attr,omitempty" json:"bandit,omitempty"`

	// PassiveNodes is the allocated node set, filled from the active tree spec.
	PassiveNodes []int64 `xml:"-" json:"passive_nodes"`
}

// Skills holds the socket groups of a build, grouped in skill sets.
type Skills struct {
	ActiveSkillSet                int           `xml:"activeSkillSet,attr" json:"active_skill_set"`
	SortGemsByDPS                 bool          `xml:"sortGemsByDPS,attr" json:"sort_gems_by_dps"`
	MatchGemLevelToCharacterLevel bool          `xml:"matchGemLevelToCharacterLevel,attr" json:"match_gem_level_to_character_level"`
	SkillSets                     []SkillSet    `xml:"SkillSet" json:"skill_sets"`
	Legacy                        []SocketGroup `xml:"Skill" json:"-"`
}

// SkillSet is one named collection of socket groups.
type SkillSet struct {
	ID     int           `xml:"id,attr" json:"id"`
	Title  string        `xml:"title,attr,omitempty" json:"title,omitempty"`
	Groups []SocketGroup `xml:"Skill" json:"groups"`
}

// SocketGroup is a set of linked gems.
type SocketGroup struct {
	Label           string `xml:"label,attr" json:"label"`
	Slot            string `xml:"slot,attr,omitempty" json:"slot,omitempty"`
	Enabled         bool   `xml:"enabled,attr" json:"enabled"`
	MainActiveSkill int    `xml:"mainActiveSkill,attr" json:"main_active_skill"`
	Gems            []Gem  `xml:"Gem" json:"gems"`
}

// Gem is a single socketed gem.
type Gem struct {
	GemID    string `xml:"gemId,attr" json:"gem_id"`
	SkillID  string `xml:"skillId,attr" json:"skill_id"`
	NameSpec string `xml:"nameSpec,attr" json:"name_spec"`
	Level    int    `xml:"level,attr" json:"level"`
	Quality  int    `xml:"quality,attr" json:"quality"`
	Enabled  bool   `xml:"enabled,attr" json:"enabled"`
}

// Tree holds the passive tree specs of a build.
type Tree struct {
	ActiveSpec int    `xml:"activeSpec,attr" json:"active_spec"`
	Specs      []Spec `xml:"Spec" json:"specs"`
}

// Spec is one passive tree allocation.
type Spec struct {
	Title       string `xml:"title,attr,omitempty" json:"title,omitempty"`
	TreeVersion string `xml:"treeVersion,attr" json:"tree_version"`
	NodesAttr   string `xml:"nodes,attr" json:"nodes"`
	ClassID     int    `xml:"classId,attr" json:"class_id"`
	AscendID    int    `xml:"ascendClassId,attr" json:"ascend_class_id"`
}

// Config is the config-input list of a build.
type Config struct {
	Inputs []Input `xml:"Input" json:"inputs"`
}

// ActiveSkillSet returns the active skill set, or nil when the index does not resolve.
func (b *Build) ActiveSkillSet() *SkillSet {
	idx := b.Skills.ActiveSkillSet - 1
	if idx < 0 || idx >= len(b.Skills.SkillSets) {
		return nil
	}
	return &b.Skills.SkillSets[idx]
}

// MainGroup returns the main socket group of the active skill set, or nil.
func (b *Build) MainGroup() *SocketGroup {
	set := b.ActiveSkillSet()
	if set == nil {
		return nil
	}
	idx := b.Character.MainSocketGroup - 1
	if idx < 0 || idx >= len(set.Groups) {
		return nil
	}
	return &set.Groups[idx]
}

// SetConfigOption upserts an input by name: replaced if present, appended otherwise.
func (b *Build) SetConfigOption(value Input) {
	for i, input := range b.Config.Inputs {
		if input.Name == value.Name {
			b.Config.Inputs[i] = value
			return
		}
	}
	b.Config.Inputs = append(b.Config.Inputs, value)
}

// RemoveConfigOption removes the input with the given name. Removing an absent name is a no-op.
func (b *Build) RemoveConfigOption(name string) {
	idx := slices.IndexFunc(b.Config.Inputs, func(in Input) bool { return in.Name == name })
	if idx >= 0 {
		b.Config.Inputs = slices.Delete(b.Config.Inputs, idx, idx+1)
	}
}

// ConfigOption returns the input with the given name.
func (b *Build) ConfigOption(name string) (Input, bool) {
	for _, input := range b.Config.Inputs {
		if input.Name == name {
			return input, true
		}
	}
	return Input{}, false
}

func (b *Build) SetMainSocketGroup(mainSocketGroup int) {
	b.Character.MainSocketGroup = mainSocketGroup
}

func (b *Build) SetClass(class string) {
	b.Character.ClassName = class
}

func (b *Build) SetAscendancy(ascendancy string) {
	b.Character.AscendClassName = ascendancy
}

func (b *Build) SetLevel(level int) {
	b.Character.Level = level
}

// AllocateNodes appends node ids to the allocated set.
func (b *Build) AllocateNodes(nodeIDs []int64) {
	b.Character.PassiveNodes = append(b.Character.PassiveNodes, nodeIDs...)
}

// DeallocateNodes removes one occurrence of nodeID. An unallocated id is a no-op.
func (b *Build) DeallocateNodes(nodeID int64) {
	idx := slices.Index(b.Character.PassiveNodes, nodeID)
	if idx < 0 {
		return
	}
	b.Character.PassiveNodes = slices.Delete(b.Character.PassiveNodes, idx, idx+1)
}

// Clone returns a deep copy that shares no memory with b.
func (b *Build) Clone() *Build {
	if b == nil {
		return nil
	}
	out := *b
	out.Character.PassiveNodes = slices.Clone(b.Character.PassiveNodes)
	out.Skills.SkillSets = make([]SkillSet, len(b.Skills.SkillSets))
	for i, set := range b.Skills.SkillSets {
		out.Skills.SkillSets[i] = set
		out.Skills.SkillSets[i].Groups = cloneGroups(set.Groups)
	}
	out.Skills.Legacy = cloneGroups(b.Skills.Legacy)
	out.Tree.Specs = slices.Clone(b.Tree.Specs)
	out.Config.Inputs = make([]Input, len(b.Config.Inputs))
	for i, in := range b.Config.Inputs {
		out.Config.Inputs[i] = in.Clone()
	}
	return &out
}

func cloneGroups(groups []SocketGroup) []SocketGroup {
	if groups == nil {
		return nil
	}
	out := make([]SocketGroup, len(groups))
	for i, g := range groups {
		out[i] = g
		out[i].Gems = slices.Clone(g.Gems)
	}
	return out
}
