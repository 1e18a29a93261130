package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInput_PayloadByType(t *testing.T) {
	tests := []struct {
		name  string
		value any
		check func(t *testing.T, in Input)
	}{
		{"bool", true, func(t *testing.T, in Input) {
			require.NotNil(t, in.Boolean)
			assert.True(t, *in.Boolean)
			assert.Nil(t, in.Number)
			assert.Nil(t, in.String)
		}},
		{"string", "aggressive", func(t *testing.T, in Input) {
			require.NotNil(t, in.String)
			assert.Equal(t, "aggressive", *in.String)
			assert.Nil(t, in.Boolean)
			assert.Nil(t, in.Number)
		}},
		{"int", 5, func(t *testing.T, in Input) {
			require.NotNil(t, in.Number)
			assert.Equal(t, 5.0, *in.Number)
			assert.Nil(t, in.Boolean)
			assert.Nil(t, in.String)
		}},
		{"float", 2.5, func(t *testing.T, in Input) {
			require.NotNil(t, in.Number)
			assert.Equal(t, 2.5, *in.Number)
		}},
		{"json number", json.Number("12"), func(t *testing.T, in Input) {
			require.NotNil(t, in.Number)
			assert.Equal(t, 12.0, *in.Number)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := NewInput("key", tt.value)
			require.NoError(t, err)
			assert.Equal(t, "key", in.Name)
			assert.NoError(t, in.Validate())
			tt.check(t, in)
		})
	}
}

func TestNewInput_RejectsUnsupported(t *testing.T) {
	for _, v := range []any{nil, []int{1}, map[string]any{}, struct{}{}} {
		_, err := NewInput("key", v)
		assert.ErrorIs(t, err, ErrInvalidConfigValue, "value %v", v)
	}
}

func TestInput_Value(t *testing.T) {
	assert.Nil(t, Input{Name: "empty"}.Value())
	assert.Equal(t, "s", Input{String: ptr("s")}.Value())
	assert.Equal(t, 3.0, Input{Number: ptr(3.0)}.Value())
	assert.Equal(t, false, Input{Boolean: ptr(false)}.Value())
}

func TestInput_Validate_MultiplePayloads(t *testing.T) {
	in := Input{Name: "bad", Boolean: ptr(true), String: ptr("x")}
	assert.ErrorIs(t, in.Validate(), ErrInvalidConfigValue)
}

func TestNumeric_IgnoresStrings(t *testing.T) {
	_, ok := Numeric("5")
	assert.False(t, ok)

	f, ok := Numeric(uint8(7))
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)
}
