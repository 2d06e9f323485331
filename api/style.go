package api

import (
	"fmt"
	"strconv"
	"strings"
)

// Attribute is a bitmask of text attributes.
type Attribute uint16

// Text attribute flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrDim                     // Faint text
	AttrItalic                  // Italic text
	AttrUnderline               // Underlined text
	AttrBlink                   // Blinking text (rarely supported)
	AttrReverse                 // Reverse video (swap fg/bg)
	AttrStrikethrough           // Strikethrough text
)

// Has reports whether the set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With returns the set with the given attribute added.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// Without returns the set with the given attribute removed.
func (a Attribute) Without(attr Attribute) Attribute {
	return a &^ attr
}

// Color is a display color. The zero value plus Default is the screen's
// default color; Indexed selects a 256-palette entry by R. Colors are kept
// canonical (Default and Indexed forms zero their unused fields) so plain
// struct equality works.
type Color struct {
	R, G, B uint8

	// Indexed marks a palette color; R holds the index.
	Indexed bool

	// Default marks the screen's default color.
	Default bool
}

// ColorDefault is the screen's default color.
var ColorDefault = Color{Default: true}

// Common colors.
var (
	ColorBlack   = Color{}
	ColorWhite   = Color{R: 255, G: 255, B: 255}
	ColorRed     = Color{R: 220, G: 50, B: 47}
	ColorGreen   = Color{R: 30, G: 215, B: 96}
	ColorBlue    = Color{R: 38, G: 139, B: 210}
	ColorYellow  = Color{R: 235, G: 180, B: 0}
	ColorCyan    = Color{R: 42, G: 161, B: 152}
	ColorMagenta = Color{R: 211, G: 54, B: 130}
	ColorGray    = Color{R: 128, G: 128, B: 128}
)

// RGB builds a true color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Indexed builds a 256-palette color.
func Indexed(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// Hex parses "#rgb" or "#rrggbb" (leading # optional).
func Hex(hex string) (Color, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	var comp [3]uint64
	var err error

	switch len(hex) {
	case 3:
		for i := 0; i < 3; i++ {
			comp[i], err = strconv.ParseUint(string(hex[i])+string(hex[i]), 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("invalid hex color %q", hex)
			}
		}
	case 6:
		for i := 0; i < 3; i++ {
			comp[i], err = strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return Color{}, fmt.Errorf("invalid hex color %q", hex)
			}
		}
	default:
		return Color{}, fmt.Errorf("invalid hex color length %q", hex)
	}

	return Color{R: uint8(comp[0]), G: uint8(comp[1]), B: uint8(comp[2])}, nil
}

// IsDefault reports whether this is the screen default color.
func (c Color) IsDefault() bool {
	return c.Default
}

// String returns a readable form for logs.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	if c.Indexed {
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Lighten moves the color toward white by amount (0..1). Indexed and
// default colors are returned unchanged.
func (c Color) Lighten(amount float64) Color {
	if c.Indexed || c.Default {
		return c
	}
	return Color{
		R: uint8(min(255, float64(c.R)+float64(255-c.R)*amount)),
		G: uint8(min(255, float64(c.G)+float64(255-c.G)*amount)),
		B: uint8(min(255, float64(c.B)+float64(255-c.B)*amount)),
	}
}

// Darken moves the color toward black by amount (0..1). Indexed and default
// colors are returned unchanged.
func (c Color) Darken(amount float64) Color {
	if c.Indexed || c.Default {
		return c
	}
	return Color{
		R: uint8(float64(c.R) * (1 - amount)),
		G: uint8(float64(c.G) * (1 - amount)),
		B: uint8(float64(c.B) * (1 - amount)),
	}
}

// Blend mixes c toward other by amount (0 = c, 1 = other). Non-true colors
// snap to whichever side amount favors.
func (c Color) Blend(other Color, amount float64) Color {
	if c.Indexed || c.Default || other.Indexed || other.Default {
		if amount < 0.5 {
			return c
		}
		return other
	}
	return Color{
		R: uint8(float64(c.R)*(1-amount) + float64(other.R)*amount),
		G: uint8(float64(c.G)*(1-amount) + float64(other.G)*amount),
		B: uint8(float64(c.B)*(1-amount) + float64(other.B)*amount),
	}
}

// Style is the visual style of drawn text.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the screen default style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle returns a style with the given foreground over the default
// background.
func NewStyle(fg Color) Style {
	return Style{Foreground: fg, Background: ColorDefault}
}

// WithForeground returns the style with the foreground replaced.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns the style with the background replaced.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns the style with bold added.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Dim returns the style with dim added.
func (s Style) Dim() Style {
	s.Attributes |= AttrDim
	return s
}

// Italic returns the style with italic added.
func (s Style) Italic() Style {
	s.Attributes |= AttrItalic
	return s
}

// Underline returns the style with underline added.
func (s Style) Underline() Style {
	s.Attributes |= AttrUnderline
	return s
}

// Reverse returns the style with reverse video added.
func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}
