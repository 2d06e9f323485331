// Package display puts the deck screen behind a small backend interface so
// the shell can run on a real terminal or on an in-memory grid in tests.
// Frame is the double-buffered draw surface the shell and plugins render
// into; Flush pushes only changed cells to the backend.
package display

import "github.com/llzware/llzdeck/api"

// EventType identifies a backend event.
type EventType int

// Event types.
const (
	EventNone EventType = iota
	EventKey
	EventWheel
	EventResize
	EventFocus
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventKey:
		return "key"
	case EventWheel:
		return "wheel"
	case EventResize:
		return "resize"
	case EventFocus:
		return "focus"
	default:
		return "unknown"
	}
}

// Key identifies a non-rune key the deck maps. Anything printable arrives
// as KeyRune with the Rune field set.
type Key int

// Keys.
const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyF8
	KeyF9
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyRune:
		return "rune"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	case KeyBackspace:
		return "backspace"
	case KeyTab:
		return "tab"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyCtrlC:
		return "ctrl-c"
	case KeyF8:
		return "f8"
	case KeyF9:
		return "f9"
	default:
		return "none"
	}
}

// ModMask is a bitmask of key modifiers.
type ModMask int

// Modifiers.
const (
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Event is one screen or input event.
type Event struct {
	Type EventType

	// Key and Rune describe EventKey events.
	Key  Key
	Rune rune
	Mod  ModMask

	// Wheel is the detent count for EventWheel; positive scrolls forward
	// (toward the next menu entry).
	Wheel int

	// Width and Height carry the new size for EventResize.
	Width  int
	Height int

	// Focused carries the new state for EventFocus.
	Focused bool
}

// Backend is the deck screen.
type Backend interface {
	// Init prepares the screen for drawing.
	Init() error

	// Shutdown restores the screen. Safe to call after a failed Init.
	Shutdown()

	// Size returns the screen dimensions in cells.
	Size() (width, height int)

	// OnResize registers a callback invoked when the screen size changes.
	OnResize(func(width, height int))

	// SetCell places a rune at the given position.
	SetCell(x, y int, r rune, st api.Style)

	// Clear erases the screen.
	Clear()

	// Show makes all pending cell updates visible.
	Show()

	// HideCursor hides the hardware cursor. The deck never shows one.
	HideCursor()

	// PollEvent blocks until the next event. After Shutdown it returns
	// an EventNone event.
	PollEvent() Event

	// PostEvent injects an event into the queue, waking PollEvent.
	PostEvent(Event)

	// HasTrueColor reports 24-bit color support.
	HasTrueColor() bool

	// Beep sounds the bell if the screen supports one.
	Beep()
}
