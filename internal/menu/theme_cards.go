package menu

import (
	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/display"
)

// CardsTheme draws a row of bordered cards with the name and
// description inside; the selected card gets the accent border.
type CardsTheme struct{}

// NewCardsTheme returns the cards renderer.
func NewCardsTheme() *CardsTheme { return &CardsTheme{} }

// Name implements Renderer.
func (t *CardsTheme) Name() string { return "cards" }

// Render implements Renderer.
func (t *CardsTheme) Render(s api.Surface, m *Model) {
	w, h := s.Size()
	s.Clear(bgStyle())

	s.Text(1, 0, m.Title(), bgStyle().WithForeground(accentColor).Bold())

	if m.Len() == 0 {
		centerText(s, h/2, emptyMessage, bgStyle().WithForeground(dimColor))
		return
	}

	const gap = 1
	cardW := (w - 2) / 3
	if cardW < 12 {
		cardW = 12
	}
	cardH := h - 4
	if cardH < 4 {
		cardH = 4
	}
	top := 2

	visible := (w - 2 + gap) / (cardW + gap)
	if visible < 1 {
		visible = 1
	}
	first := 0
	if m.selected >= visible {
		first = m.selected - visible + 1
	}

	x := 1
	for i := first; i < len(m.items) && x+cardW <= w; i++ {
		it := m.items[i]
		t.card(s, x, top, cardW, cardH, it, i == m.selected, m.anim)
		x += cardW + gap
	}

	centerText(s, h-1, positionDots(m.SelectedIndex(), m.Len()), bgStyle().WithForeground(tagColor))
}

func (t *CardsTheme) card(s api.Surface, x, y, w, h int, it Item, selected bool, anim float64) {
	border := bgStyle().WithForeground(tagColor)
	name := bgStyle().WithForeground(textColor)
	if selected {
		border = bgStyle().WithForeground(pulseColor(anim))
		name = bgStyle().WithForeground(textColor).Bold()
	}

	display.Box(s, x, y, w, h, border)

	inner := w - 4
	label := trim(it.Name+folderSuffix(it), inner)
	s.Text(x+2, y+1, label, name)

	if it.IsFolder {
		s.Text(x+2, y+2, trim(categoryLabel(it.Category), inner), bgStyle().WithForeground(dimColor))
		return
	}

	for j, line := range wrapText(it.Description, inner, h-3) {
		s.Text(x+2, y+2+j, line, bgStyle().WithForeground(dimColor))
	}
}
