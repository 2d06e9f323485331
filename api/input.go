package api

// Input is the per-frame input snapshot handed to Update. Button fields are
// true when the control was pressed at least once during the frame; Dial
// accumulates rotation detents over the frame.
type Input struct {
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	Select bool
	Back   bool

	// Dial is the net dial rotation this frame; positive is clockwise.
	Dial int

	// Rune is the last printable key typed this frame, 0 if none.
	Rune rune
}

// Any reports whether any control was activated this frame.
func (in Input) Any() bool {
	return in.Up || in.Down || in.Left || in.Right ||
		in.Select || in.Back || in.Dial != 0 || in.Rune != 0
}

// Next reports a move toward the next menu entry: Down, Right, or a
// clockwise dial step.
func (in Input) Next() bool {
	return in.Down || in.Right || in.Dial > 0
}

// Prev reports a move toward the previous menu entry: Up, Left, or a
// counter-clockwise dial step.
func (in Input) Prev() bool {
	return in.Up || in.Left || in.Dial < 0
}
