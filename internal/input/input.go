// Package input folds backend events into per-frame input snapshots.
//
// The deck's physical controls are a dial, a select press, and a back
// button. On a keyboard those map to the arrow keys plus vim-style hjkl,
// Enter or Space for select, and Escape or Backspace for back; the mouse
// wheel stands in for the dial.
package input

import (
	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/display"
)

// Collector accumulates backend events between frames and hands the shell
// one api.Input per frame. Buttons latch; dial detents sum.
type Collector struct {
	cur api.Input
}

// New creates an empty collector.
func New() *Collector {
	return &Collector{}
}

// Handle folds one backend event into the pending snapshot. Events that
// carry no input are ignored.
func (c *Collector) Handle(ev display.Event) {
	switch ev.Type {
	case display.EventKey:
		c.handleKey(ev)
	case display.EventWheel:
		c.cur.Dial += ev.Wheel
	}
}

func (c *Collector) handleKey(ev display.Event) {
	switch ev.Key {
	case display.KeyUp:
		c.cur.Up = true
	case display.KeyDown:
		c.cur.Down = true
	case display.KeyLeft:
		c.cur.Left = true
	case display.KeyRight:
		c.cur.Right = true
	case display.KeyEnter:
		c.cur.Select = true
	case display.KeyEscape, display.KeyBackspace:
		c.cur.Back = true
	case display.KeyRune:
		switch ev.Rune {
		case 'k':
			c.cur.Up = true
		case 'j':
			c.cur.Down = true
		case 'h':
			c.cur.Left = true
		case 'l':
			c.cur.Right = true
		case ' ':
			c.cur.Select = true
		default:
			c.cur.Rune = ev.Rune
		}
	}
}

// Frame returns the accumulated snapshot and resets for the next frame.
func (c *Collector) Frame() api.Input {
	in := c.cur
	c.cur = api.Input{}
	return in
}
