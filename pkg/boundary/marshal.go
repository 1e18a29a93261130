package boundary

import "encoding/json"

// Marshal prepares v for a transport that cannot carry Go values.
// Handles become markers; everything else is deep-copied through JSON so the
// receiver owns its copy.
func Marshal(v any) (json.RawMessage, error) {
	if h, ok := v.(Handle); ok {
		return json.Marshal(Marker{Ref: h.ID().String(), Type: h.TypeName()})
	}
	return json.Marshal(v)
}

// IsHandle reports whether v crosses the boundary as a remote reference.
func IsHandle(v any) bool {
	_, ok := v.(Handle)
	return ok
}
