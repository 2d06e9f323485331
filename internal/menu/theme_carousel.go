package menu

import "github.com/llzware/llzdeck/api"

// CarouselTheme is a horizontal strip with the selected item centered
// and bright; neighbors fade with distance and the strip slides when
// the selection moves.
type CarouselTheme struct{}

// NewCarouselTheme returns the carousel renderer.
func NewCarouselTheme() *CarouselTheme { return &CarouselTheme{} }

// Name implements Renderer.
func (t *CarouselTheme) Name() string { return "carousel" }

// Render implements Renderer.
func (t *CarouselTheme) Render(s api.Surface, m *Model) {
	w, h := s.Size()
	s.Clear(bgStyle())

	centerText(s, 0, m.Title(), bgStyle().WithForeground(accentColor).Bold())

	if m.Len() == 0 {
		centerText(s, h/2, emptyMessage, bgStyle().WithForeground(dimColor))
		return
	}

	slot := w / 3
	if slot < 10 {
		slot = 10
	}
	if slot > 24 {
		slot = 24
	}
	mid := h / 2

	// The strip slides from the previous selection to the new one.
	offset := float64(m.animFrom) + (float64(m.selected)-float64(m.animFrom))*easeOut(m.anim)

	for i, it := range m.items {
		x := w/2 + int((float64(i)-offset)*float64(slot)+0.5)
		if x+slot/2 < 0 || x-slot/2 >= w {
			continue
		}

		label := trim(it.Name+folderSuffix(it), slot-2)
		dist := i - m.selected
		if dist == 0 {
			st := bgStyle().WithForeground(pulseColor(m.anim)).Bold()
			centerAt(s, x, mid, label, st)
		} else {
			st := bgStyle().WithForeground(dimByDistance(textColor, dist))
			centerAt(s, x, mid, label, st)
		}
	}

	arrows := bgStyle().WithForeground(dimColor)
	if m.selected > 0 {
		s.Set(0, mid, '❮', arrows)
	}
	if m.selected < m.Len()-1 {
		s.Set(w-1, mid, '❯', arrows)
	}

	if it, ok := m.Selected(); ok && it.Description != "" {
		centerText(s, h-2, trim(it.Description, w-2), bgStyle().WithForeground(dimColor))
	}
	centerText(s, h-1, positionDots(m.SelectedIndex(), m.Len()), bgStyle().WithForeground(tagColor))
}

// centerAt draws text centered on the given column.
func centerAt(s api.Surface, x, y int, text string, st api.Style) {
	s.Text(x-textWidth(text)/2, y, text, st)
}
