package lua

import "errors"

// Errors for Lua plugin loading and execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoEntryPoint is returned when a directory plugin has no main
	// script.
	ErrNoEntryPoint = errors.New("plugin has no entry point")

	// ErrMainOutsideDir is returned when a manifest's main path tries
	// to escape the plugin directory.
	ErrMainOutsideDir = errors.New("manifest main path leaves the plugin directory")
)
