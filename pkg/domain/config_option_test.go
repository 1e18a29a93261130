package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigOption_IsInert(t *testing.T) {
	list := ConfigOption{Key: "mode", Kind: KindList, List: []ListOption{
		{Value: "off", Label: "Off"},
		{Value: "aggressive", Label: "Aggressive"},
	}}
	numericList := ConfigOption{Key: "stacks", Kind: KindList, List: []ListOption{
		{Value: 0}, {Value: 1},
	}}
	check := ConfigOption{Key: "lvl", Kind: KindCheck}
	checkDefaultOn := ConfigOption{Key: "on", Kind: KindCheck, DefaultState: ptr(true)}
	count := ConfigOption{Key: "n", Kind: KindCount}

	tests := []struct {
		name   string
		option ConfigOption
		value  any
		want   bool
	}{
		{"list first entry", list, "off", true},
		{"list other entry", list, "aggressive", false},
		{"list numeric first entry", numericList, 0.0, true},
		{"list numeric other", numericList, 1, false},
		{"list type mismatch", numericList, "0", false},
		{"empty list", ConfigOption{Kind: KindList}, "x", false},
		{"check false without default", check, false, true},
		{"check true without default", check, true, false},
		{"check default true", checkDefaultOn, true, true},
		{"check false against default true", checkDefaultOn, false, false},
		{"check non bool", check, "false", false},
		{"other nil", count, nil, true},
		{"other zero", count, 0, false},
		{"other text", ConfigOption{Kind: KindText}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.option.IsInert(tt.value))
		})
	}
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(nil, nil))
	assert.False(t, ValuesEqual(nil, false))
	assert.True(t, ValuesEqual(int64(3), 3.0))
	assert.False(t, ValuesEqual(true, 1))
	assert.True(t, ValuesEqual("a", "a"))
	assert.False(t, ValuesEqual([]int{1}, []int{1}))
}
