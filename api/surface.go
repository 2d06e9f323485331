package api

// Surface is the draw target handed to a plugin's Draw. Coordinates are
// cell-based with the origin at the top left; all methods clip silently at
// the surface bounds. The shell clears the surface before each Draw, so a
// plugin only paints what it wants visible.
type Surface interface {
	// Size returns the surface dimensions in cells.
	Size() (width, height int)

	// Set places a single rune. Wide runes claim the following column.
	Set(x, y int, r rune, st Style)

	// Text writes a string starting at x, y and returns the number of
	// columns advanced.
	Text(x, y int, s string, st Style) int

	// Fill floods a w by h rectangle at x, y with the given rune.
	Fill(x, y, w, h int, r rune, st Style)

	// Clear fills the whole surface with spaces in the given style.
	Clear(st Style)
}
