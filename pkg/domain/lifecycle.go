package domain

// Lifecycle is the boot state of a session's engine.
type Lifecycle int

const (
	Uninitialized Lifecycle = iota
	Booting
	Ready
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Booting:
		return "booting"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}
