package domain

// OptionKind is the control type of a config option.
type OptionKind string

const (
	KindList    OptionKind = "list"
	KindCheck   OptionKind = "check"
	KindCount   OptionKind = "count"
	KindInteger OptionKind = "integer"
	KindText    OptionKind = "text"
)

// ListOption is one choice of a list option. The first entry is the "off" choice.
type ListOption struct {
	Value any    `json:"val" yaml:"val" mapstructure:"val"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// ConfigOption describes a config key: its kind and the value that counts as inert.
type ConfigOption struct {
	Key          string       `json:"var" yaml:"var" mapstructure:"var"`
	Kind         OptionKind   `json:"type" yaml:"type" mapstructure:"type"`
	Label        string       `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	List         []ListOption `json:"list,omitempty" yaml:"list,omitempty" mapstructure:"list"`
	DefaultState *bool        `json:"defaultState,omitempty" yaml:"defaultState,omitempty" mapstructure:"defaultState"`
}

// IsInert reports whether value equals the option's default, in which case the
// input must not be stored on the build.
//
//   - list: inert iff value equals the first list entry's value.
//   - check: inert iff value equals DefaultState when declared, false otherwise.
//   - any other kind: inert iff value is nil.
func (o ConfigOption) IsInert(value any) bool {
	switch o.Kind {
	case KindList:
		if len(o.List) == 0 {
			return false
		}
		return ValuesEqual(value, o.List[0].Value)
	case KindCheck:
		if o.DefaultState != nil {
			return ValuesEqual(value, *o.DefaultState)
		}
		return ValuesEqual(value, false)
	default:
		return value == nil
	}
}

// ValuesEqual compares two config values. Numbers compare by value regardless of
// their Go type; other values must have the same type and be equal.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := Numeric(a); ok {
		fb, ok := Numeric(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	}
	return false
}
