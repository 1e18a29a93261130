package localengine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/buildsync/pkg/adapters/localengine"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestCodec_RoundTrip(t *testing.T) {
	xml := readTestdata(t, "build.xml")

	code, err := localengine.CompressEncode(xml)
	require.NoError(t, err)
	assert.NotContains(t, code, "+")
	assert.NotContains(t, code, "/")

	got, err := localengine.DecodeDecompress(code)
	require.NoError(t, err)
	assert.Equal(t, xml, got)
}

func TestDecodeDecompress_Invalid(t *testing.T) {
	for _, code := range []string{"", "   ", "not a build", "aGVsbG8="} {
		_, err := localengine.DecodeDecompress(code)
		assert.ErrorIs(t, err, domain.ErrDecode, "code %q", code)
	}
}

func TestParseBuild(t *testing.T) {
	build, err := localengine.ParseBuild(readTestdata(t, "build.xml"))
	require.NoError(t, err)

	assert.Equal(t, 90, build.Character.Level)
	assert.Equal(t, "Marauder", build.Character.ClassName)
	assert.Equal(t, "Juggernaut", build.Character.AscendClassName)
	assert.Equal(t, 1, build.Character.MainSocketGroup)
	assert.Equal(t, []int64{100, 101, 102}, build.Character.PassiveNodes)

	require.Len(t, build.Skills.SkillSets, 1)
	group := build.MainGroup()
	require.NotNil(t, group)
	assert.Equal(t, "Body Armour", group.Slot)
	require.Len(t, group.Gems, 3)
	assert.Equal(t, "Metadata/Items/Gems/SkillGemSmite", group.Gems[0].GemID, "legacy gem id is remapped")
	assert.False(t, group.Gems[2].Enabled)

	require.Len(t, build.Config.Inputs, 3)
	boss, ok := build.ConfigOption("enemyIsBoss")
	require.True(t, ok)
	assert.Equal(t, "Pinnacle", boss.Value())
	stationary, _ := build.ConfigOption("conditionStationary")
	assert.Equal(t, true, stationary.Value())
	charges, _ := build.ConfigOption("multiplierPowerCharge")
	assert.Equal(t, 3.0, charges.Value())
}

func TestParseBuild_LegacySkills(t *testing.T) {
	xml := `<PathOfBuilding>
		<Build level="1" className="Witch" mainSocketGroup="1"/>
		<Skills><Skill enabled="true" mainActiveSkill="1"><Gem gemId="Metadata/Items/Gems/RainOfSpores" nameSpec="Toxic Rain" enabled="true"/></Skill></Skills>
		<Tree activeSpec="1"><Spec treeVersion="3_18" nodes=""/></Tree>
	</PathOfBuilding>`

	build, err := localengine.ParseBuild(xml)
	require.NoError(t, err)

	require.Len(t, build.Skills.SkillSets, 1)
	assert.Equal(t, 1, build.Skills.ActiveSkillSet)
	assert.Nil(t, build.Skills.Legacy)
	group := build.MainGroup()
	require.NotNil(t, group)
	assert.Equal(t, "Metadata/Items/Gems/SkillGemToxicRain", group.Gems[0].GemID)
	assert.Empty(t, build.Character.PassiveNodes)
	assert.NotNil(t, build.Character.PassiveNodes)
}

func TestParseBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"malformed", "<PathOfBuilding><Build"},
		{"non-integer nodes", `<PathOfBuilding><Tree activeSpec="1"><Spec nodes="1,x"/></Tree></PathOfBuilding>`},
		{"active spec out of range", `<PathOfBuilding><Tree activeSpec="3"><Spec nodes="1"/></Tree></PathOfBuilding>`},
		{"input with two payloads", `<PathOfBuilding><Config><Input name="a" number="1" string="x"/></Config></PathOfBuilding>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := localengine.ParseBuild(tt.xml)
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestParseBuild_StripsNilAttributes(t *testing.T) {
	xml := `<PathOfBuilding><Build level="nil" className="Duelist"/></PathOfBuilding>`
	build, err := localengine.ParseBuild(xml)
	require.NoError(t, err)
	assert.Equal(t, 0, build.Character.Level)
	assert.Equal(t, "Duelist", build.Character.ClassName)
}
