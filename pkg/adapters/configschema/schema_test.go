package configschema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/buildsync/pkg/adapters/configschema"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	schema, err := configschema.Load(filepath.Join("testdata", "options.yaml"))
	require.NoError(t, err)

	boss, ok := schema.Lookup("enemyIsBoss")
	require.True(t, ok)
	assert.Equal(t, domain.KindList, boss.Kind)
	require.Len(t, boss.List, 3)
	assert.Equal(t, "None", boss.List[0].Value)
	assert.True(t, boss.IsInert("None"))
	assert.False(t, boss.IsInert("Boss"))

	onslaught, ok := schema.Lookup("buffOnslaught")
	require.True(t, ok)
	require.NotNil(t, onslaught.DefaultState)
	assert.True(t, *onslaught.DefaultState)
	assert.True(t, onslaught.IsInert(true))
	assert.False(t, onslaught.IsInert(false))

	stationary, ok := schema.Lookup("conditionStationary")
	require.True(t, ok)
	assert.Nil(t, stationary.DefaultState)
	assert.True(t, stationary.IsInert(false))

	penalty, ok := schema.Lookup("resistancePenalty")
	require.True(t, ok)
	assert.True(t, penalty.IsInert(0.0), "numeric list values compare by value")
	assert.True(t, penalty.IsInert(0))

	_, ok = schema.Lookup("missing")
	assert.False(t, ok)

	assert.Contains(t, schema.Keys(), "customMods")
	assert.Len(t, schema.Keys(), 7)
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{"options":[{"var":"usePowerCharges","type":"check","defaultState":false},{"var":"enemyLevel","type":"count"}]}`)

	schema, err := configschema.Parse(data)
	require.NoError(t, err)

	opt, ok := schema.Lookup("usePowerCharges")
	require.True(t, ok)
	assert.Equal(t, domain.KindCheck, opt.Kind)
	assert.True(t, opt.IsInert(false))

	lvl, ok := schema.Lookup("enemyLevel")
	require.True(t, ok)
	assert.True(t, lvl.IsInert(nil))
	assert.False(t, lvl.IsInert(84))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "options: [\n"},
		{"missing var", "options:\n  - type: check\n"},
		{"duplicate", "options:\n  - {var: a, type: check}\n  - {var: a, type: count}\n"},
		{"empty list", "options:\n  - {var: a, type: list}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := configschema.Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := configschema.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStatic(t *testing.T) {
	schema := configschema.Static{
		"mode": {Kind: domain.KindList, List: []domain.ListOption{{Value: "a"}, {Value: "b"}}},
	}

	opt, ok := schema.Lookup("mode")
	require.True(t, ok)
	assert.Equal(t, "mode", opt.Key)
	assert.True(t, opt.IsInert("a"))

	_, ok = schema.Lookup("other")
	assert.False(t, ok)
}
