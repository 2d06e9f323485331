// Package config loads and watches the host configuration.
//
// Configuration lives in a single TOML file, deck.toml, found under the
// user's config directory unless LLZDECK_CONFIG points elsewhere. Values
// decode over compiled-in defaults, then LLZDECK_* environment variables
// override individual fields, then Validate rejects anything the host
// cannot run with. A missing file is not an error; the defaults stand.
//
// The Watcher half reports edits to the config and visibility files so
// the frame loop can reload them without restarting.
package config
