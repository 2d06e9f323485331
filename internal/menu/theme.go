package menu

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/llzware/llzdeck/api"
)

// ErrUnknownTheme is returned by Themes.Get for an unregistered name.
var ErrUnknownTheme = errors.New("unknown menu theme")

// DefaultTheme is the style used when the config names none.
const DefaultTheme = "carthing"

// Renderer draws one visual style of the menu.
type Renderer interface {
	// Name is the registry key, lower case.
	Name() string

	// Render draws the model onto the surface.
	Render(s api.Surface, m *Model)
}

// Themes is a named registry of menu renderers.
type Themes struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

// NewThemes returns an empty registry.
func NewThemes() *Themes {
	return &Themes{byName: make(map[string]Renderer)}
}

// DefaultThemes returns a registry holding the five built-in styles.
func DefaultThemes() *Themes {
	t := NewThemes()
	t.Register(NewListTheme())
	t.Register(NewCarouselTheme())
	t.Register(NewCardsTheme())
	t.Register(NewCarThingTheme())
	t.Register(NewGridTheme())
	return t
}

// Register adds a renderer, replacing any previous one with the same
// name. Names are case-insensitive.
func (t *Themes) Register(r Renderer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byName[strings.ToLower(r.Name())] = r
}

// Get returns the named renderer.
func (t *Themes) Get(name string) (Renderer, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownTheme)
	}
	return r, nil
}

// Names returns the registered theme names, sorted.
func (t *Themes) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the theme after name in sorted order, wrapping around,
// for the theme-cycle key. An unknown name lands on the first theme.
func (t *Themes) Next(name string) string {
	names := t.Names()
	if len(names) == 0 {
		return name
	}
	for i, n := range names {
		if n == strings.ToLower(name) {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// Palette shared by the built-in themes.
var (
	accentColor = mustHex("#1DB954")
	textColor   = mustHex("#E8EAED")
	dimColor    = mustHex("#6A7078")
	bgColor     = mustHex("#101218")
	tagColor    = mustHex("#3B4250")
)

// emptyMessage is drawn by every theme when no plugins are loaded.
const emptyMessage = "no plugins found"

func mustHex(s string) api.Color {
	c, err := api.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// bgStyle is the cleared-screen style the themes start from.
func bgStyle() api.Style {
	return api.DefaultStyle().WithBackground(bgColor)
}

// blend interpolates two colors in Hcl space, which keeps perceived
// brightness even through the ramp.
func blend(from, to api.Color, t float64) api.Color {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	cf := colorful.Color{R: float64(from.R) / 255, G: float64(from.G) / 255, B: float64(from.B) / 255}
	ct := colorful.Color{R: float64(to.R) / 255, G: float64(to.G) / 255, B: float64(to.B) / 255}
	out := cf.BlendHcl(ct, t).Clamped()
	return api.RGB(uint8(out.R*255+0.5), uint8(out.G*255+0.5), uint8(out.B*255+0.5))
}

// dimByDistance fades a color toward the background the further an
// item sits from the selection.
func dimByDistance(c api.Color, distance int) api.Color {
	if distance < 0 {
		distance = -distance
	}
	t := float64(distance) * 0.35
	if t > 0.85 {
		t = 0.85
	}
	return blend(c, bgColor, t)
}

// pulseColor ramps the selection accent in as the model's animation
// completes.
func pulseColor(anim float64) api.Color {
	return blend(dimColor, accentColor, easeOut(anim))
}

// easeOut is a cubic ease-out over 0..1.
func easeOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}

// trim cuts text to width columns, ending with an ellipsis when it had
// to cut.
func trim(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(text) <= width {
		return text
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	return b.String() + "…"
}

// textWidth is the display width of a string in columns.
func textWidth(s string) int {
	return uniseg.StringWidth(s)
}

// wrapText splits text into at most maxRows rows of at most width
// columns each, breaking wherever the width runs out.
func wrapText(text string, width, maxRows int) []string {
	if width <= 0 || maxRows <= 0 {
		return nil
	}
	var rows []string
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		gw := g.Width()
		if gw == 0 {
			continue
		}
		if used+gw > width {
			rows = append(rows, b.String())
			if len(rows) == maxRows {
				return rows
			}
			b.Reset()
			used = 0
		}
		b.WriteString(g.Str())
		used += gw
	}
	if b.Len() > 0 {
		rows = append(rows, b.String())
	}
	return rows
}

// centerText draws text centered on row y.
func centerText(s api.Surface, y int, text string, st api.Style) {
	w, _ := s.Size()
	text = trim(text, w)
	x := (w - textWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	s.Text(x, y, text, st)
}

// positionDots renders the dot strip showing the selection position.
// Long lists fall back to a numeric position.
func positionDots(selected, n int) string {
	if n <= 0 {
		return ""
	}
	if n > 12 {
		return fmt.Sprintf("%d/%d", selected+1, n)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == selected {
			b.WriteRune('●')
		} else {
			b.WriteRune('○')
		}
	}
	return b.String()
}

// folderSuffix renders a folder's child count for row display.
func folderSuffix(it Item) string {
	if !it.IsFolder {
		return ""
	}
	return fmt.Sprintf(" (%d)", it.Count)
}
