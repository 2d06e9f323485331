// Package plugin provides the plugin registry for llzdeck.
//
// The deck's applications are plugins discovered in a single flat
// directory. Two kinds are supported:
//
//   - Native plugins: shared objects (.so) built with the Go plugin
//     package that export the vtable factory named by
//     api.GetPluginSymbol.
//   - Lua plugins: single .lua scripts, or directories containing a
//     plugin.yaml manifest, run in a sandboxed interpreter.
//
// # Layout
//
// A plugin directory looks like:
//
//	~/.local/share/llzdeck/plugins/
//	├── clock.so         # native plugin
//	├── hello.lua        # single-file Lua plugin
//	└── timer/           # directory Lua plugin
//	    ├── plugin.yaml  # manifest (optional)
//	    └── main.lua
//
// # Lifecycle
//
// Records move through these states:
//
//	Load() -> StateLoaded
//	StateLoaded -> launch -> StateActive
//	StateActive -> close -> StateLoaded
//	any -> failure -> StateError
//
// The registry only loads and unloads; launching a plugin (calling its
// Init/Update/Draw hooks) is the host's job. The registry never calls
// into plugin code except to close driver handles.
//
// # Change detection
//
// TakeSnapshot records the size and modification time of every
// top-level candidate in the plugin directory. Snapshot.Changed
// re-reads the directory and reports whether anything was added,
// removed, or touched. When it reports true the host calls
// Registry.Refresh, which reconciles loaded records with the directory:
// new files load, missing files unload, changed files reload.
//
// Native code cannot be unloaded from a Go process. The native driver
// keeps the first successful open of each path for the process
// lifetime and reports ErrNeedsRestart if the file changes afterwards.
// Lua plugins reload fully.
//
// # Visibility
//
// An optional visibility file controls which plugins the menu shows
// and in what order. Names are matched case-insensitively. See
// LoadVisibility.
package plugin
