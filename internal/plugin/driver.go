package plugin

import (
	"time"

	"github.com/llzware/llzdeck/api"
)

// Kind identifies the driver that loaded a plugin.
type Kind string

// Driver kinds.
const (
	KindNative Kind = "native"
	KindLua    Kind = "lua"
)

// Handle owns whatever a driver keeps open for a loaded plugin, such
// as a Lua interpreter. Closing the handle releases those resources.
type Handle interface {
	Close() error
}

// HandleFunc adapts a function to the Handle interface. A nil
// HandleFunc closes without error, which suits drivers that hold
// nothing per plugin.
type HandleFunc func() error

// Close implements Handle.
func (f HandleFunc) Close() error {
	if f == nil {
		return nil
	}
	return f()
}

// Driver loads plugins of one kind from disk.
type Driver interface {
	// Kind identifies the driver.
	Kind() Kind

	// CanLoad reports whether the directory entry looks like a plugin
	// this driver can open. It must not touch the filesystem.
	CanLoad(path string, isDir bool) bool

	// Load opens the plugin at path and returns its vtable together
	// with the handle that owns it. The registry validates the vtable,
	// so drivers only need to build it.
	Load(path string) (*api.API, Handle, error)
}

// Record is one loaded plugin as the registry tracks it.
//
// Callers receiving records from the registry must treat them as
// read-only; state transitions go through Registry.SetState and
// Registry.SetError.
type Record struct {
	// API is the plugin's validated vtable.
	API *api.API

	// Path is the file or directory the plugin was loaded from.
	Path string

	// Kind is the driver that loaded it.
	Kind Kind

	// State is the current lifecycle state.
	State State

	// Err holds the failure when State is StateError.
	Err error

	// LoadedAt is when the registry accepted the record.
	LoadedAt time.Time

	handle Handle
	size   int64
	mod    time.Time
}

// Name returns the plugin's display name.
func (r *Record) Name() string {
	return r.API.Name
}
