package display

import (
	"strings"
	"sync"

	"github.com/llzware/llzdeck/api"
)

// Null is an in-memory Backend for tests: a cell grid plus an injectable
// event queue. It never touches a terminal.
type Null struct {
	mu            sync.Mutex
	width, height int
	runes         [][]rune
	styles        [][]api.Style
	events        chan Event
	resizeHandler func(width, height int)
	initialized   bool
	shutdown      bool
	beeps         int
}

var _ Backend = (*Null)(nil)

// NewNull creates a null backend with the given dimensions.
func NewNull(width, height int) *Null {
	n := &Null{
		width:  width,
		height: height,
		events: make(chan Event, 64),
	}
	n.allocate()
	return n
}

func (n *Null) allocate() {
	n.runes = make([][]rune, n.height)
	n.styles = make([][]api.Style, n.height)
	for y := 0; y < n.height; y++ {
		n.runes[y] = make([]rune, n.width)
		n.styles[y] = make([]api.Style, n.width)
		for x := 0; x < n.width; x++ {
			n.runes[y][x] = ' '
			n.styles[y][x] = api.DefaultStyle()
		}
	}
}

func (n *Null) Init() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.initialized = true
	return nil
}

func (n *Null) Shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.shutdown {
		return
	}
	n.shutdown = true
	close(n.events)
}

func (n *Null) Size() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.width, n.height
}

func (n *Null) OnResize(callback func(width, height int)) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.resizeHandler = callback
}

func (n *Null) SetCell(x, y int, r rune, st api.Style) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if x < 0 || x >= n.width || y < 0 || y >= n.height {
		return
	}
	n.runes[y][x] = r
	n.styles[y][x] = st
}

func (n *Null) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.allocate()
}

func (n *Null) Show() {}

func (n *Null) HideCursor() {}

func (n *Null) PollEvent() Event {
	ev, ok := <-n.events
	if !ok {
		return Event{Type: EventNone}
	}
	return ev
}

func (n *Null) PostEvent(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// The lock spans the send so Shutdown cannot close the channel under
	// a racing post. The send never blocks, so holding it is safe.
	if n.shutdown {
		return
	}
	select {
	case n.events <- event:
	default:
	}
}

func (n *Null) HasTrueColor() bool { return true }

func (n *Null) Beep() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.beeps++
}

// Resize changes the grid size and fires the resize callback, mirroring a
// terminal resize.
func (n *Null) Resize(width, height int) {
	n.mu.Lock()
	n.width = width
	n.height = height
	n.allocate()
	handler := n.resizeHandler
	n.mu.Unlock()

	if handler != nil {
		handler(width, height)
	}
	n.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// CellAt returns the rune and style at a position, for assertions.
func (n *Null) CellAt(x, y int) (rune, api.Style) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if x < 0 || x >= n.width || y < 0 || y >= n.height {
		return 0, api.Style{}
	}
	return n.runes[y][x], n.styles[y][x]
}

// Row returns row y as a trimmed string, for assertions.
func (n *Null) Row(y int) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if y < 0 || y >= n.height {
		return ""
	}
	return strings.TrimRight(string(n.runes[y]), " ")
}

// Beeps returns how many times Beep was called.
func (n *Null) Beeps() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.beeps
}
