package menu

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/llzware/llzdeck/api"
)

// GridTheme packs the items into glyph tiles laid out in columns, with
// the selected tile in reverse video and the selected item's name as a
// caption under the grid.
type GridTheme struct{}

// NewGridTheme returns the grid renderer.
func NewGridTheme() *GridTheme { return &GridTheme{} }

// Name implements Renderer.
func (t *GridTheme) Name() string { return "grid" }

// Tile geometry in columns and rows, borders included.
const (
	gridTileW = 9
	gridTileH = 3
	gridGap   = 1
)

// Render implements Renderer.
func (t *GridTheme) Render(s api.Surface, m *Model) {
	w, h := s.Size()
	s.Clear(bgStyle())

	s.Text(1, 0, m.Title(), bgStyle().WithForeground(accentColor).Bold())

	if m.Len() == 0 {
		centerText(s, h/2, emptyMessage, bgStyle().WithForeground(dimColor))
		return
	}

	cols := (w - 2 + gridGap) / (gridTileW + gridGap)
	if cols < 1 {
		cols = 1
	}
	top := 2
	rows := (h - top - 2 + gridGap) / (gridTileH + gridGap)
	if rows < 1 {
		rows = 1
	}

	// Scroll whole rows so the selection stays on screen.
	firstRow := 0
	if selRow := m.selected / cols; selRow >= rows {
		firstRow = selRow - rows + 1
	}
	first := firstRow * cols

	for i := first; i < len(m.items) && i < first+rows*cols; i++ {
		cell := i - first
		x := 1 + (cell%cols)*(gridTileW+gridGap)
		y := top + (cell/cols)*(gridTileH+gridGap)
		t.tile(s, x, y, m.items[i], i == m.selected, m.anim)
	}

	if it, ok := m.Selected(); ok {
		caption := trim(it.Name+folderSuffix(it), w-2)
		centerText(s, h-2, caption, bgStyle().WithForeground(pulseColor(m.anim)).Bold())
		if it.Description != "" {
			centerText(s, h-1, trim(it.Description, w-2), bgStyle().WithForeground(dimColor))
		}
	}
}

func (t *GridTheme) tile(s api.Surface, x, y int, it Item, selected bool, anim float64) {
	st := bgStyle().WithForeground(textColor)
	if selected {
		st = bgStyle().WithForeground(pulseColor(anim)).Reverse()
	}

	for row := 0; row < gridTileH; row++ {
		for col := 0; col < gridTileW; col++ {
			s.Set(x+col, y+row, ' ', st)
		}
	}

	glyph := tileGlyph(it)
	gx := x + (gridTileW-textWidth(glyph))/2
	s.Text(gx, y+gridTileH/2, glyph, st.Bold())
}

// tileGlyph picks the tile face: folders get a marker, plugins their
// first letter.
func tileGlyph(it Item) string {
	if it.IsFolder {
		return "▸"
	}
	g := uniseg.NewGraphemes(it.Name)
	if g.Next() {
		return strings.ToUpper(g.Str())
	}
	return "?"
}
