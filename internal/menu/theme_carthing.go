package menu

import (
	"strings"

	"github.com/llzware/llzdeck/api"
)

// CarThingTheme is the dial-first default: one oversized centered tile
// for the selected item, a category tag above it, side arrows for the
// dial directions, and a dot strip for position.
type CarThingTheme struct{}

// NewCarThingTheme returns the carthing renderer.
func NewCarThingTheme() *CarThingTheme { return &CarThingTheme{} }

// Name implements Renderer.
func (t *CarThingTheme) Name() string { return "carthing" }

// Render implements Renderer.
func (t *CarThingTheme) Render(s api.Surface, m *Model) {
	w, h := s.Size()
	s.Clear(bgStyle())

	centerText(s, 0, m.Title(), bgStyle().WithForeground(dimColor))

	if m.Len() == 0 {
		centerText(s, h/2, emptyMessage, bgStyle().WithForeground(dimColor))
		return
	}

	it, _ := m.Selected()
	mid := h / 2

	tag := categoryLabel(it.Category)
	if it.IsFolder {
		tag = "folder"
	}
	centerText(s, mid-2, strings.ToUpper(tag), bgStyle().WithForeground(tagColor))

	// The big tile: the name spaced out one blank column per letter so
	// it reads at arm's length.
	name := trim(it.Name+folderSuffix(it), w-6)
	if textWidth(name)*2-1 <= w-6 {
		name = spaceOut(name)
	}
	centerText(s, mid, name, bgStyle().WithForeground(pulseColor(m.anim)).Bold())

	if it.Description != "" {
		centerText(s, mid+2, trim(it.Description, w-6), bgStyle().WithForeground(dimColor))
	}

	arrows := bgStyle().WithForeground(dimColor)
	if m.Len() > 1 {
		s.Set(1, mid, '❮', arrows)
		s.Set(w-2, mid, '❯', arrows)
	}

	centerText(s, h-2, positionDots(m.SelectedIndex(), m.Len()), bgStyle().WithForeground(tagColor))
}

// spaceOut inserts a blank column between every rune.
func spaceOut(text string) string {
	parts := strings.Split(text, "")
	return strings.Join(parts, " ")
}
