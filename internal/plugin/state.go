package plugin

// State represents the lifecycle state of a loaded plugin.
type State int

// Plugin states.
const (
	// StateLoaded - plugin is loaded and can be launched.
	StateLoaded State = iota

	// StateActive - plugin owns the screen.
	StateActive

	// StateError - plugin failed during init, a frame call, or shutdown.
	StateError
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsUsable returns true if the plugin can be launched.
func (s State) IsUsable() bool {
	return s == StateLoaded
}
