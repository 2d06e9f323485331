package display

import "github.com/llzware/llzdeck/api"

// Box runes.
const (
	boxH  = '─'
	boxV  = '│'
	boxTL = '┌'
	boxTR = '┐'
	boxBL = '└'
	boxBR = '┘'
)

// HLine draws a horizontal line of w cells starting at (x, y).
func HLine(s api.Surface, x, y, w int, st api.Style) {
	for cx := x; cx < x+w; cx++ {
		s.Set(cx, y, boxH, st)
	}
}

// VLine draws a vertical line of h cells starting at (x, y).
func VLine(s api.Surface, x, y, h int, st api.Style) {
	for cy := y; cy < y+h; cy++ {
		s.Set(x, cy, boxV, st)
	}
}

// Box draws a single-line border around the w by h rectangle at (x, y).
// Degenerate sizes collapse to a line or nothing.
func Box(s api.Surface, x, y, w, h int, st api.Style) {
	if w <= 0 || h <= 0 {
		return
	}
	if h == 1 {
		HLine(s, x, y, w, st)
		return
	}
	if w == 1 {
		VLine(s, x, y, h, st)
		return
	}

	HLine(s, x+1, y, w-2, st)
	HLine(s, x+1, y+h-1, w-2, st)
	VLine(s, x, y+1, h-2, st)
	VLine(s, x+w-1, y+1, h-2, st)

	s.Set(x, y, boxTL, st)
	s.Set(x+w-1, y, boxTR, st)
	s.Set(x, y+h-1, boxBL, st)
	s.Set(x+w-1, y+h-1, boxBR, st)
}
