package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBuild_SetConfigOption_Upsert(t *testing.T) {
	b := &Build{}

	b.SetConfigOption(Input{Name: "a", Number: ptr(1.0)})
	b.SetConfigOption(Input{Name: "b", Boolean: ptr(true)})
	b.SetConfigOption(Input{Name: "a", Number: ptr(2.0)})

	require.Len(t, b.Config.Inputs, 2)
	assert.Equal(t, "a", b.Config.Inputs[0].Name)
	assert.Equal(t, 2.0, *b.Config.Inputs[0].Number)
	assert.Equal(t, "b", b.Config.Inputs[1].Name)
}

func TestBuild_RemoveConfigOption(t *testing.T) {
	b := &Build{Config: Config{Inputs: []Input{
		{Name: "a", String: ptr("x")},
		{Name: "b", String: ptr("y")},
	}}}

	b.RemoveConfigOption("missing")
	assert.Len(t, b.Config.Inputs, 2)

	b.RemoveConfigOption("a")
	require.Len(t, b.Config.Inputs, 1)
	assert.Equal(t, "b", b.Config.Inputs[0].Name)

	b.RemoveConfigOption("b")
	assert.Empty(t, b.Config.Inputs)
}

func TestBuild_NodeAllocation(t *testing.T) {
	b := &Build{}
	b.AllocateNodes([]int64{10, 20, 30})
	b.AllocateNodes([]int64{20})
	assert.Equal(t, []int64{10, 20, 30, 20}, b.Character.PassiveNodes)

	b.DeallocateNodes(20)
	assert.Equal(t, []int64{10, 30, 20}, b.Character.PassiveNodes)

	b.DeallocateNodes(99)
	assert.Equal(t, []int64{10, 30, 20}, b.Character.PassiveNodes)
}

func TestBuild_MainGroup(t *testing.T) {
	b := &Build{
		Character: Character{MainSocketGroup: 2},
		Skills:    Skills{
			ActiveSkillSet: 1,
			SkillSets: []SkillSet{{ID: 1, Groups: []SocketGroup{
				{Label: "first"},
				{Label: "second"},
			}}},
		},
	}
	require.NotNil(t, b.MainGroup())
	assert.Equal(t, "second", b.MainGroup().Label)

	b.SetMainSocketGroup(3)
	assert.Nil(t, b.MainGroup())

	b.Skills.ActiveSkillSet = 0
	assert.Nil(t, b.ActiveSkillSet())
}

func TestBuild_Clone_IsDeep(t *testing.T) {
	b := &Build{
		Character: Character{Level: 90, PassiveNodes: []int64{1, 2}},
		Skills:    Skills{SkillSets: []SkillSet{{Groups: []SocketGroup{{Gems: []Gem{{NameSpec: "Fireball"}}}}}}},
		Config:    Config{Inputs: []Input{{Name: "a", Number: ptr(5.0)}}},
	}

	c := b.Clone()
	c.Character.PassiveNodes[0] = 99
	c.Skills.SkillSets[0].Groups[0].Gems[0].NameSpec = "Arc"
	*c.Config.Inputs[0].Number = 7
	c.SetLevel(1)

	assert.Equal(t, int64(1), b.Character.PassiveNodes[0])
	assert.Equal(t, "Fireball", b.Skills.SkillSets[0].Groups[0].Gems[0].NameSpec)
	assert.Equal(t, 5.0, *b.Config.Inputs[0].Number)
	assert.Equal(t, 90, b.Character.Level)

	var nilBuild *Build
	assert.Nil(t, nilBuild.Clone())
}
