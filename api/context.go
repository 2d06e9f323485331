package api

import (
	"fmt"
	"strings"
	"time"
)

// Host is the control surface the shell offers a running plugin.
// Implementations collect requests during a frame; the shell applies them
// after the plugin's calls return, so a plugin never observes its own
// request taking effect mid-call.
type Host interface {
	// RequestPlugin asks the shell to switch to the named plugin after the
	// current one closes.
	RequestPlugin(name string)

	// RequestMenuRebuild marks the menu stale. It is rebuilt on the next
	// return to the menu.
	RequestMenuRebuild()

	// Notify queues a notification banner.
	Notify(n Notification)

	// Logf writes to the shell log under the plugin's name.
	Logf(format string, args ...any)
}

// Context carries screen geometry and host services for one activation of a
// plugin. A fresh Context is handed to Init each time the plugin launches.
type Context struct {
	// Width and Height are the surface size in cells at launch. Resizes
	// show up through Surface.Size on the next Draw.
	Width  int
	Height int

	host Host
}

// NewContext builds a Context bound to the given host. A nil host is
// allowed; every control method then becomes a no-op, which keeps plugin
// code testable without a running shell.
func NewContext(width, height int, host Host) *Context {
	return &Context{Width: width, Height: height, host: host}
}

// RequestPlugin asks the shell to chain into the named plugin when this one
// closes.
func (c *Context) RequestPlugin(name string) {
	if c == nil || c.host == nil {
		return
	}
	c.host.RequestPlugin(name)
}

// RequestMenuRebuild marks the menu stale.
func (c *Context) RequestMenuRebuild() {
	if c == nil || c.host == nil {
		return
	}
	c.host.RequestMenuRebuild()
}

// Notify queues a notification banner.
func (c *Context) Notify(n Notification) {
	if c == nil || c.host == nil {
		return
	}
	c.host.Notify(n)
}

// Notifyf queues an info notification with a formatted title and no body.
func (c *Context) Notifyf(format string, args ...any) {
	c.Notify(Notification{Title: fmt.Sprintf(format, args...)})
}

// Logf writes to the shell log under the plugin's name.
func (c *Context) Logf(format string, args ...any) {
	if c == nil || c.host == nil {
		return
	}
	c.host.Logf(format, args...)
}

// Level classifies a notification.
type Level int

// Notification levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

// String returns a human-readable level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name to its Level, case-insensitively.
// Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "ok":
		return LevelSuccess
	case "warn", "warning":
		return LevelWarn
	case "error", "err":
		return LevelError
	default:
		return LevelInfo
	}
}

// Notification is a banner message shown by the shell's overlay queue.
type Notification struct {
	// Title is the bold first line.
	Title string

	// Body is the optional second line.
	Body string

	// Level selects the banner accent.
	Level Level

	// Duration is how long the banner stays fully visible. Zero means the
	// shell default.
	Duration time.Duration
}
