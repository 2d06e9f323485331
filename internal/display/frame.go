package display

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/llzware/llzdeck/api"
)

// cell is one frame cell. A zero rune with zero width marks the spill
// column of a wide rune to its left.
type cell struct {
	r  rune
	w  int
	st api.Style
}

func blankCell(st api.Style) cell {
	return cell{r: ' ', w: 1, st: st}
}

// Frame is the double-buffered draw surface handed to menu themes and
// plugins. Drawing goes to the back buffer; Flush pushes only the diff
// against the front buffer to a backend, then presents it.
type Frame struct {
	width, height int
	front         [][]cell
	back          [][]cell
	fullRedraw    bool
}

var _ api.Surface = (*Frame)(nil)

// NewFrame creates a frame with the given dimensions.
func NewFrame(width, height int) *Frame {
	f := &Frame{width: width, height: height, fullRedraw: true}
	f.allocate()
	return f
}

func (f *Frame) allocate() {
	f.front = make([][]cell, f.height)
	f.back = make([][]cell, f.height)
	for y := 0; y < f.height; y++ {
		f.front[y] = make([]cell, f.width)
		f.back[y] = make([]cell, f.width)
		for x := 0; x < f.width; x++ {
			f.front[y][x] = blankCell(api.DefaultStyle())
			f.back[y][x] = blankCell(api.DefaultStyle())
		}
	}
}

// Size returns the frame dimensions in cells.
func (f *Frame) Size() (int, int) {
	return f.width, f.height
}

// Set places a single rune. Wide runes claim the following column when it
// exists; control runes are ignored.
func (f *Frame) Set(x, y int, r rune, st api.Style) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	w := runeWidth(r)
	if w == 0 {
		return
	}
	f.back[y][x] = cell{r: r, w: w, st: st}
	if w == 2 && x+1 < f.width {
		f.back[y][x+1] = cell{st: st}
	}
}

// Text writes a string starting at x, y, clipping at the right edge, and
// returns the number of columns advanced.
func (f *Frame) Text(x, y int, s string, st api.Style) int {
	if y < 0 || y >= f.height {
		return 0
	}

	col := x
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if w == 0 {
			continue
		}
		if col+w > f.width {
			break
		}
		if col >= 0 {
			runes := g.Runes()
			f.back[y][col] = cell{r: runes[0], w: w, st: st}
			if w == 2 {
				f.back[y][col+1] = cell{st: st}
			}
		}
		col += w
	}

	advanced := col - x
	if advanced < 0 {
		return 0
	}
	return advanced
}

// Fill floods a w by h rectangle with the given rune.
func (f *Frame) Fill(x, y, w, h int, r rune, st api.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			f.Set(col, row, r, st)
		}
	}
}

// Clear fills the whole frame with spaces in the given style.
func (f *Frame) Clear(st api.Style) {
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			f.back[y][x] = blankCell(st)
		}
	}
}

// Resize resizes both buffers, preserving back-buffer content where it
// still fits, and forces a full redraw on the next Flush.
func (f *Frame) Resize(width, height int) {
	if width == f.width && height == f.height {
		return
	}

	oldBack := f.back
	oldWidth, oldHeight := f.width, f.height

	f.width = width
	f.height = height
	f.allocate()

	copyHeight := min(oldHeight, height)
	copyWidth := min(oldWidth, width)
	for y := 0; y < copyHeight; y++ {
		copy(f.back[y][:copyWidth], oldBack[y][:copyWidth])
	}

	f.fullRedraw = true
}

// Flush pushes changed cells to the backend and presents them. Spill
// columns of wide runes are never emitted; the backend's wide-rune
// handling owns them.
func (f *Frame) Flush(b Backend) {
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			c := f.back[y][x]
			if !f.fullRedraw && c == f.front[y][x] {
				continue
			}
			if c.r != 0 {
				b.SetCell(x, y, c.r, c.st)
			}
			f.front[y][x] = c
		}
	}
	f.fullRedraw = false
	b.Show()
}

// Row returns back-buffer row y as a right-trimmed string, for tests.
func (f *Frame) Row(y int) string {
	if y < 0 || y >= f.height {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < f.width; x++ {
		if c := f.back[y][x]; c.r != 0 {
			sb.WriteRune(c.r)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// CellAt returns the back-buffer rune and style at a position, for tests.
func (f *Frame) CellAt(x, y int) (rune, api.Style) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return 0, api.Style{}
	}
	c := f.back[y][x]
	return c.r, c.st
}

// runeWidth returns the display width of a single rune.
func runeWidth(r rune) int {
	if r < ' ' || r == 0x7F {
		return 0
	}
	return uniseg.StringWidth(string(r))
}
