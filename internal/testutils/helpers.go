package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/buildsync/pkg/adapters/configschema"
	"github.com/aretw0/buildsync/pkg/adapters/localengine"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/aretw0/buildsync/pkg/session"
	"github.com/stretchr/testify/require"
)

// Manifest is a reference engine image with one tree version and three gems.
const Manifest = `name: reference
tree_versions: ["3_18"]
skill_gems:
  - id: Metadata/Items/Gems/SkillGemSmite
    name: Smite
    tags: [Attack, Melee, Lightning]
  - id: Metadata/Items/Gems/SkillGemCyclone
    name: Cyclone
    tags: [Attack, Melee, Channelling]
  - id: Metadata/Items/Gems/SupportGemFortify
    name: Fortify Support
    tags: [Support, Melee]
    support: true
`

// Tree is a small passive tree: 1-2-3 in a line with 4 hanging off 2.
const Tree = `{"nodes":{
  "1":{"name":"Start","out":["2"]},
  "2":{"name":"Strength","out":["3","4"]},
  "3":{"name":"Life"},
  "4":{"name":"Armour"}
}}`

// BuildXML is a level 90 Marauder with Smite as the main skill.
const BuildXML = `<PathOfBuilding>
	<Build level="90" className="Marauder" ascendClassName="Juggernaut" mainSocketGroup="1"/>
	<Skills activeSkillSet="1">
		<SkillSet id="1">
			<Skill label="Main" enabled="true" mainActiveSkill="1">
				<Gem gemId="Metadata/Items/Gems/Smite" nameSpec="Smite" level="20" quality="20" enabled="true"/>
				<Gem gemId="Metadata/Items/Gems/SupportGemFortify" nameSpec="Fortify" level="20" quality="0" enabled="true"/>
			</Skill>
		</SkillSet>
	</Skills>
	<Tree activeSpec="1"><Spec treeVersion="3_18" nodes="1,2"/></Tree>
	<Config><Input name="enemyIsBoss" string="Pinnacle"/></Config>
</PathOfBuilding>`

// Options is a config schema covering each option kind.
const Options = `options:
  - var: enemyIsBoss
    type: list
    list:
      - {val: "None", label: "No"}
      - {val: "Pinnacle", label: "Pinnacle Boss"}
  - var: conditionStationary
    type: check
  - var: multiplierPowerCharge
    type: count
`

// SetupDataDir writes the reference tree into a temporary data directory and
// returns its path.
func SetupDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	treeDir := filepath.Join(dir, domain.DataVersion, "tree")
	require.NoError(t, os.MkdirAll(treeDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(treeDir, "3_18.json"), []byte(Tree), 0644))
	return dir
}

// BuildCode encodes xml as a shared build code.
func BuildCode(t *testing.T, xml string) string {
	t.Helper()
	code, err := localengine.CompressEncode(xml)
	require.NoError(t, err, "Failed to encode build")
	return code
}

// Schema parses Options.
func Schema(t *testing.T) *configschema.Schema {
	t.Helper()
	schema, err := configschema.Parse([]byte(Options))
	require.NoError(t, err, "Failed to parse options")
	return schema
}

// NewSession creates an unbooted session on the reference engine and closes it
// when the test ends.
func NewSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()

	loader := localengine.NewLoader(localengine.WithDataDir(SetupDataDir(t)))
	all := append([]session.Option{session.WithSchema(Schema(t))}, opts...)
	sess := session.New(loader, all...)
	t.Cleanup(func() { sess.Close() })
	return sess
}
