package menu

import "github.com/llzware/llzdeck/api"

// ListTheme is the plain vertical list: one row per item, a selection
// bar on the left, scroll markers, and the selected item's description
// as a footer.
type ListTheme struct{}

// NewListTheme returns the list renderer.
func NewListTheme() *ListTheme { return &ListTheme{} }

// Name implements Renderer.
func (t *ListTheme) Name() string { return "list" }

// Render implements Renderer.
func (t *ListTheme) Render(s api.Surface, m *Model) {
	w, h := s.Size()
	s.Clear(bgStyle())

	title := bgStyle().WithForeground(accentColor).Bold()
	s.Text(1, 0, m.Title(), title)

	if m.Len() == 0 {
		centerText(s, h/2, emptyMessage, bgStyle().WithForeground(dimColor))
		return
	}

	top := 2
	rows := h - top - 2
	if rows < 1 {
		rows = 1
	}
	first := 0
	if m.selected >= rows {
		first = m.selected - rows + 1
	}

	for row := 0; row < rows && first+row < len(m.items); row++ {
		i := first + row
		it := m.items[i]
		y := top + row

		label := it.Name + folderSuffix(it)
		if it.IsFolder {
			label = "▸ " + label
		}
		label = trim(label, w-4)

		if i == m.selected {
			st := bgStyle().WithForeground(pulseColor(m.anim)).Bold()
			s.Set(1, y, '▌', st)
			s.Text(3, y, label, st)
		} else {
			s.Text(3, y, label, bgStyle().WithForeground(textColor))
		}
	}

	marker := bgStyle().WithForeground(dimColor)
	if first > 0 {
		s.Set(w-2, top, '▲', marker)
	}
	if first+rows < len(m.items) {
		s.Set(w-2, top+rows-1, '▼', marker)
	}

	if it, ok := m.Selected(); ok && it.Description != "" {
		s.Text(1, h-1, trim(it.Description, w-2), bgStyle().WithForeground(dimColor))
	}
}
