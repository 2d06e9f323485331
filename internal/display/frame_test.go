package display

import (
	"testing"

	"github.com/llzware/llzdeck/api"
)

func TestFrameTextAndRow(t *testing.T) {
	f := NewFrame(20, 4)

	n := f.Text(2, 1, "hello", api.DefaultStyle())
	if n != 5 {
		t.Errorf("Text advanced %d columns, want 5", n)
	}
	if got := f.Row(1); got != "  hello" {
		t.Errorf("Row(1) = %q, want %q", got, "  hello")
	}
}

func TestFrameTextClipsAtEdge(t *testing.T) {
	f := NewFrame(6, 2)

	f.Text(3, 0, "abcdef", api.DefaultStyle())
	if got := f.Row(0); got != "   abc" {
		t.Errorf("Row(0) = %q, want %q", got, "   abc")
	}

	// Off-grid rows are ignored.
	if n := f.Text(0, 9, "x", api.DefaultStyle()); n != 0 {
		t.Errorf("Text on bad row advanced %d, want 0", n)
	}
}

func TestFrameWideRunes(t *testing.T) {
	f := NewFrame(10, 1)

	n := f.Text(0, 0, "日本", api.DefaultStyle())
	if n != 4 {
		t.Errorf("Text advanced %d columns, want 4", n)
	}

	r, _ := f.CellAt(0, 0)
	if r != '日' {
		t.Errorf("CellAt(0,0) = %q, want %q", r, '日')
	}
	r, _ = f.CellAt(1, 0)
	if r != 0 {
		t.Errorf("CellAt(1,0) = %q, want spill cell", r)
	}
	r, _ = f.CellAt(2, 0)
	if r != '本' {
		t.Errorf("CellAt(2,0) = %q, want %q", r, '本')
	}
}

func TestFrameFillAndClear(t *testing.T) {
	st := api.NewStyle(api.ColorGreen)
	f := NewFrame(8, 4)

	f.Fill(1, 1, 3, 2, '#', st)
	r, got := f.CellAt(2, 2)
	if r != '#' {
		t.Errorf("CellAt(2,2) = %q, want %q", r, '#')
	}
	if got != st {
		t.Errorf("style = %+v, want %+v", got, st)
	}

	f.Clear(api.DefaultStyle())
	if got := f.Row(1); got != "" {
		t.Errorf("Row(1) after Clear = %q, want empty", got)
	}
}

func TestFrameFlushDiff(t *testing.T) {
	f := NewFrame(5, 2)
	b := NewNull(5, 2)

	f.Text(0, 0, "ab", api.DefaultStyle())
	f.Flush(b)

	if got := b.Row(0); got != "ab" {
		t.Errorf("backend Row(0) = %q, want %q", got, "ab")
	}

	// A second flush with one changed cell only rewrites that cell.
	f.Set(1, 0, 'c', api.DefaultStyle())
	f.Flush(b)
	if got := b.Row(0); got != "ac" {
		t.Errorf("backend Row(0) = %q, want %q", got, "ac")
	}
}

func TestFrameResizePreservesContent(t *testing.T) {
	f := NewFrame(10, 3)
	f.Text(0, 0, "keep", api.DefaultStyle())

	f.Resize(6, 2)
	if got := f.Row(0); got != "keep" {
		t.Errorf("Row(0) after shrink = %q, want %q", got, "keep")
	}

	w, h := f.Size()
	if w != 6 || h != 2 {
		t.Errorf("Size() = %dx%d, want 6x2", w, h)
	}

	// Growing keeps content too.
	f.Resize(12, 4)
	if got := f.Row(0); got != "keep" {
		t.Errorf("Row(0) after grow = %q, want %q", got, "keep")
	}
}

func TestFrameSetBounds(t *testing.T) {
	f := NewFrame(3, 3)

	// None of these should panic or write.
	f.Set(-1, 0, 'x', api.DefaultStyle())
	f.Set(0, -1, 'x', api.DefaultStyle())
	f.Set(3, 0, 'x', api.DefaultStyle())
	f.Set(0, 3, 'x', api.DefaultStyle())

	for y := 0; y < 3; y++ {
		if got := f.Row(y); got != "" {
			t.Errorf("Row(%d) = %q, want empty", y, got)
		}
	}
}
