// Package app wires the shell together: configuration, logging, the
// display backend, the plugin registry, the menu, and the notification
// queue, driven by a fixed-rate frame loop.
//
// The loop goroutine owns every piece of mutable state. The only other
// goroutine is the input pump, which forwards backend events over a
// buffered channel. Plugin hooks run on the loop goroutine; requests a
// plugin makes through api.Host are collected by hostControl and
// applied after the hook returns.
//
// The shell is in one of two states. In stateMenu it renders the
// themed menu and rescans the plugin directory on the configured
// interval. In statePlugin the active plugin receives input and draws
// the whole surface. Every plugin call is recovered, so a panicking
// plugin is marked failed and closed instead of taking the shell down.
package app
