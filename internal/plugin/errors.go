package plugin

import "errors"

// Plugin registry errors.
var (
	// ErrPluginNotFound is returned when a plugin cannot be located.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrDuplicateName is returned when a plugin reports a name that is
	// already registered. Names are compared case-insensitively.
	ErrDuplicateName = errors.New("duplicate plugin name")

	// ErrNoDriver is returned when no driver accepts a path.
	ErrNoDriver = errors.New("no driver accepts this plugin")

	// ErrUnsupported is returned by the native driver on platforms
	// without Go plugin support.
	ErrUnsupported = errors.New("native plugins are not supported on this platform")

	// ErrNeedsRestart is returned when a native plugin changed on disk.
	// Shared objects stay resident for the process lifetime, so the new
	// code can only be picked up by restarting the shell.
	ErrNeedsRestart = errors.New("native plugin changed on disk, restart to reload")

	// ErrBadSymbol is returned when a plugin export has the wrong type.
	ErrBadSymbol = errors.New("plugin export has the wrong type")

	// ErrVersionMismatch is returned when a native plugin was built
	// against a different api version than the host speaks.
	ErrVersionMismatch = errors.New("plugin built against a different api version")
)
