package domain

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Input is a named config value. At most one of Boolean, Number and String is set.
type Input struct {
	Name    string   `xml:"name,attr" json:"name"`
	Boolean *bool    `xml:"boolean,attr,omitempty" json:"boolean,omitempty"`
	Number  *float64 `xml:"number,attr,omitempty" json:"number,omitempty"`
	String  *string  `xml:"string,attr,omitempty" json:"string,omitempty"`
}

// NewInput builds an input whose single payload field is chosen by the runtime type of value.
// Booleans, strings and any Go numeric type (or json.Number) are accepted.
func NewInput(name string, value any) (Input, error) {
	in := Input{Name: name}
	switch v := value.(type) {
	case bool:
		in.Boolean = &v
	case string:
		in.String = &v
	default:
		n, ok := Numeric(value)
		if !ok {
			return Input{}, fmt.Errorf("%w: %q has unsupported type %T", ErrInvalidConfigValue, name, value)
		}
		in.Number = &n
	}
	return in, nil
}

// Value returns whichever payload is populated, or nil when none is.
func (in Input) Value() any {
	switch {
	case in.String != nil:
		return *in.String
	case in.Number != nil:
		return *in.Number
	case in.Boolean != nil:
		return *in.Boolean
	}
	return nil
}

// Validate reports an error when more than one payload field is populated.
func (in Input) Validate() error {
	set := 0
	for _, populated := range []bool{in.Boolean != nil, in.Number != nil, in.String != nil} {
		if populated {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("%w: %q has %d payload fields", ErrInvalidConfigValue, in.Name, set)
	}
	return nil
}

// Clone returns a copy whose payload pointers are not shared with in.
func (in Input) Clone() Input {
	out := Input{Name: in.Name}
	if in.Boolean != nil {
		b := *in.Boolean
		out.Boolean = &b
	}
	if in.Number != nil {
		n := *in.Number
		out.Number = &n
	}
	if in.String != nil {
		s := *in.String
		out.String = &s
	}
	return out
}

// Numeric converts Go numeric types and json.Number to float64.
// Strings are never treated as numbers.
func Numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
