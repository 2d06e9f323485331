package input

import (
	"testing"

	"github.com/llzware/llzdeck/internal/display"
)

func TestCollectorLatchesButtons(t *testing.T) {
	c := New()

	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyDown})
	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyEnter})

	in := c.Frame()
	if !in.Down || !in.Select {
		t.Errorf("Frame() = %+v, want Down and Select", in)
	}

	// Frame resets the snapshot.
	if next := c.Frame(); next.Any() {
		t.Errorf("second Frame() = %+v, want empty", next)
	}
}

func TestCollectorDialSums(t *testing.T) {
	c := New()

	c.Handle(display.Event{Type: display.EventWheel, Wheel: 1})
	c.Handle(display.Event{Type: display.EventWheel, Wheel: 1})
	c.Handle(display.Event{Type: display.EventWheel, Wheel: -1})

	if in := c.Frame(); in.Dial != 1 {
		t.Errorf("Dial = %d, want 1", in.Dial)
	}
}

func TestCollectorVimKeys(t *testing.T) {
	c := New()
	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyRune, Rune: 'k'})
	if in := c.Frame(); !in.Up {
		t.Errorf("rune k: %+v, want Up", in)
	}

	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyRune, Rune: 'j'})
	if in := c.Frame(); !in.Down {
		t.Errorf("rune j: %+v, want Down", in)
	}

	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyRune, Rune: ' '})
	if in := c.Frame(); !in.Select {
		t.Errorf("rune space: %+v, want Select", in)
	}

	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyRune, Rune: 'x'})
	if in := c.Frame(); in.Rune != 'x' {
		t.Errorf("rune x: Rune = %q, want %q", in.Rune, 'x')
	}
}

func TestCollectorBackKeys(t *testing.T) {
	c := New()
	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyEscape})
	if in := c.Frame(); !in.Back {
		t.Error("escape did not set Back")
	}

	c.Handle(display.Event{Type: display.EventKey, Key: display.KeyBackspace})
	if in := c.Frame(); !in.Back {
		t.Error("backspace did not set Back")
	}
}

func TestCollectorIgnoresNonInput(t *testing.T) {
	c := New()
	c.Handle(display.Event{Type: display.EventResize, Width: 80, Height: 24})
	c.Handle(display.Event{Type: display.EventFocus, Focused: true})

	if in := c.Frame(); in.Any() {
		t.Errorf("Frame() = %+v, want empty", in)
	}
}
