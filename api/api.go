// Package api defines the contract between the llzdeck shell and its plugins.
//
// Plugins compile against this package alone. A native plugin is a Go plugin
// (-buildmode=plugin) exporting the GetPluginSymbol function; script plugins
// implement the same surface through the shell's Lua driver. The shell hands
// a plugin a Context when it becomes the active surface, then drives it with
// Update and Draw once per frame until it closes.
package api

import (
	"errors"
	"strings"
)

// Native plugin linkage.
const (
	// GetPluginSymbol is the exported symbol a native plugin must provide.
	// Its type is func() *API.
	GetPluginSymbol = "LlzGetPlugin"

	// VersionSymbol is an optional exported int holding the ABI version the
	// plugin was built against. When present it must equal Version.
	VersionSymbol = "LlzAPIVersion"

	// Version is the current plugin ABI version.
	Version = 1
)

// Validation errors returned by API.Validate.
var (
	// ErrNilAPI indicates the plugin returned a nil vtable.
	ErrNilAPI = errors.New("nil plugin API")

	// ErrNoName indicates an empty display name.
	ErrNoName = errors.New("plugin has no name")

	// ErrNoUpdate indicates a missing update function.
	ErrNoUpdate = errors.New("plugin missing update function")

	// ErrNoDraw indicates a missing draw function.
	ErrNoDraw = errors.New("plugin missing draw function")
)

// Category groups plugins in folder-mode menus.
type Category string

// Known categories. ParseCategory maps anything else to CategoryOther.
const (
	CategoryMedia  Category = "media"
	CategoryTools  Category = "tools"
	CategorySystem Category = "system"
	CategoryGames  Category = "games"
	CategoryOther  Category = "other"
)

// ParseCategory normalizes a category string. Matching is case-insensitive;
// unknown and empty values collapse to CategoryOther.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMedia:
		return CategoryMedia
	case CategoryTools:
		return CategoryTools
	case CategorySystem:
		return CategorySystem
	case CategoryGames:
		return CategoryGames
	default:
		return CategoryOther
	}
}

// API is the vtable a plugin exposes to the shell.
//
// Update and Draw are required; the loader rejects a plugin missing either.
// Init, Shutdown, and WantsClose may be nil and are treated as no-ops.
// Function fields rather than interface methods so the loader can detect
// the missing pieces.
type API struct {
	// Name is the display name and the registry key.
	Name string

	// Description is shown by menu themes with room for it.
	Description string

	// Category places the plugin in folder-mode menus.
	Category Category

	// HandlesBack keeps Back presses flowing to Update instead of closing
	// the plugin. The shell still closes it when WantsClose reports true.
	HandlesBack bool

	// Init is called once when the plugin becomes the active surface.
	Init func(ctx *Context)

	// Update advances plugin state by dt seconds.
	Update func(in Input, dt float64)

	// Draw renders the plugin onto the frame surface.
	Draw func(s Surface)

	// Shutdown is called when the plugin is closed or unloaded.
	Shutdown func()

	// WantsClose is polled once per frame while the plugin is active.
	WantsClose func() bool
}

// Validate reports whether the vtable is usable by the shell.
func (a *API) Validate() error {
	if a == nil {
		return ErrNilAPI
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrNoName
	}
	if a.Update == nil {
		return ErrNoUpdate
	}
	if a.Draw == nil {
		return ErrNoDraw
	}
	return nil
}
