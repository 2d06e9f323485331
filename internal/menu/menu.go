package menu

import (
	"sort"
	"strings"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/plugin"
)

// Item is one menu row: a launchable plugin or a category folder.
type Item struct {
	Name        string
	Description string
	Category    api.Category

	// IsFolder marks a category folder; Count is its child count.
	IsFolder bool
	Count    int
}

// Action is what a Select press resolved to.
type Action int

// Select outcomes.
const (
	ActionNone Action = iota
	ActionLaunch
	ActionEnterFolder
)

// selectAnimRate is how fast the selection pulse completes, in
// animation units per second.
const selectAnimRate = 6.0

// categoryOrder fixes the folder order at the root level.
var categoryOrder = []api.Category{
	api.CategoryMedia,
	api.CategoryTools,
	api.CategorySystem,
	api.CategoryGames,
	api.CategoryOther,
}

// Model is the menu's item list and navigation state. It is owned by
// the frame loop and is not safe for concurrent use.
type Model struct {
	plugins  []Item // every visible plugin, in display order
	items    []Item // the current level
	selected int

	folders  bool
	inFolder bool
	folder   api.Category

	animFrom int
	anim     float64
}

// NewModel returns an empty menu.
func NewModel() *Model {
	return &Model{anim: 1}
}

// Rebuild recomputes the item list from the registry's records.
// Hidden plugins are dropped, explicit order values from the
// visibility file move entries ahead of the alphabetical rest, and
// when folders is true and the plugins span more than one category the
// root level becomes category folders. The current selection survives
// the rebuild when its item still exists.
func (m *Model) Rebuild(recs []*plugin.Record, vis *plugin.Visibility, folders bool) {
	prevName := ""
	if it, ok := m.Selected(); ok {
		prevName = it.Name
	}

	m.plugins = buildItems(recs, vis)
	m.folders = folders && categoryCount(m.plugins) > 1

	// A folder can vanish when its last plugin is unloaded.
	if m.inFolder && (!m.folders || len(m.childrenOf(m.folder)) == 0) {
		m.inFolder = false
	}
	m.refreshLevel()

	if prevName == "" || !m.SelectByName(prevName) {
		m.clamp()
	}
	m.anim = 1
	m.animFrom = m.selected
}

// buildItems filters and orders the registry records into menu items.
func buildItems(recs []*plugin.Record, vis *plugin.Visibility) []Item {
	type pinnedItem struct {
		item  Item
		order int
	}

	var pinned []pinnedItem
	var rest []Item
	for _, rec := range recs {
		if !rec.State.IsUsable() {
			continue
		}
		name := rec.Name()
		if vis != nil && vis.Hidden(name) {
			continue
		}
		it := Item{
			Name:        name,
			Description: rec.API.Description,
			Category:    api.ParseCategory(string(rec.API.Category)),
		}
		if vis != nil {
			if ord := vis.Order(name); ord != 0 {
				pinned = append(pinned, pinnedItem{item: it, order: ord})
				continue
			}
		}
		rest = append(rest, it)
	}

	// Records arrive in registry order, so equal order values and the
	// unpinned tail keep the case-insensitive name order.
	sort.SliceStable(pinned, func(i, j int) bool {
		return pinned[i].order < pinned[j].order
	})

	out := make([]Item, 0, len(pinned)+len(rest))
	for _, p := range pinned {
		out = append(out, p.item)
	}
	return append(out, rest...)
}

func categoryCount(items []Item) int {
	seen := make(map[api.Category]bool)
	for _, it := range items {
		seen[it.Category] = true
	}
	return len(seen)
}

// refreshLevel rebuilds the current level's items from the plugin
// list.
func (m *Model) refreshLevel() {
	switch {
	case m.inFolder:
		m.items = m.childrenOf(m.folder)
	case m.folders:
		m.items = m.folderItems()
	default:
		m.items = m.plugins
	}
}

func (m *Model) childrenOf(cat api.Category) []Item {
	var out []Item
	for _, it := range m.plugins {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}

func (m *Model) folderItems() []Item {
	var out []Item
	for _, cat := range categoryOrder {
		kids := m.childrenOf(cat)
		if len(kids) == 0 {
			continue
		}
		out = append(out, Item{
			Name:     categoryLabel(cat),
			Category: cat,
			IsFolder: true,
			Count:    len(kids),
		})
	}
	return out
}

func categoryLabel(c api.Category) string {
	s := string(c)
	if s == "" {
		s = string(api.CategoryOther)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Move shifts the selection by delta, wrapping at both ends, and
// restarts the selection animation.
func (m *Model) Move(delta int) {
	if len(m.items) == 0 || delta == 0 {
		return
	}
	n := len(m.items)
	m.animFrom = m.selected
	m.selected = ((m.selected+delta)%n + n) % n
	m.anim = 0
}

// Select confirms the current item. Folders are entered in place;
// plugins are returned by name for the frame loop to launch.
func (m *Model) Select() (Action, string) {
	it, ok := m.Selected()
	if !ok {
		return ActionNone, ""
	}
	if it.IsFolder {
		m.inFolder = true
		m.folder = it.Category
		m.refreshLevel()
		m.selected = 0
		m.animFrom = 0
		m.anim = 1
		return ActionEnterFolder, ""
	}
	return ActionLaunch, it.Name
}

// Back leaves the current folder, landing on its entry at the root.
// It reports false at the root, where Back means nothing.
func (m *Model) Back() bool {
	if !m.inFolder {
		return false
	}
	folder := m.folder
	m.inFolder = false
	m.refreshLevel()

	m.selected = 0
	for i, it := range m.items {
		if it.IsFolder && it.Category == folder {
			m.selected = i
			break
		}
	}
	m.animFrom = m.selected
	m.anim = 1
	return true
}

// SelectByName moves the selection to the named item at the current
// level, matching case-insensitively.
func (m *Model) SelectByName(name string) bool {
	for i, it := range m.items {
		if strings.EqualFold(it.Name, name) {
			m.selected = i
			m.animFrom = i
			return true
		}
	}
	return false
}

// Update advances the selection animation by dt seconds.
func (m *Model) Update(dt float64) {
	if m.anim < 1 {
		m.anim += dt * selectAnimRate
		if m.anim > 1 {
			m.anim = 1
		}
	}
}

// Selected returns the current item.
func (m *Model) Selected() (Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return Item{}, false
	}
	return m.items[m.selected], true
}

// SelectedIndex returns the selection index at the current level.
func (m *Model) SelectedIndex() int { return m.selected }

// Len returns the number of items at the current level.
func (m *Model) Len() int { return len(m.items) }

// Items returns a copy of the current level's items.
func (m *Model) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// InFolder reports whether the menu is inside a category folder.
func (m *Model) InFolder() bool { return m.inFolder }

// Folder returns the category of the current folder, empty at the root.
func (m *Model) Folder() api.Category {
	if !m.inFolder {
		return ""
	}
	return m.folder
}

// Title returns the heading for the current level.
func (m *Model) Title() string {
	if m.inFolder {
		return categoryLabel(m.folder)
	}
	return "llzdeck"
}

// Anim returns the selection animation progress in 0..1.
func (m *Model) Anim() float64 { return m.anim }

// AnimFrom returns the index the selection is animating away from.
func (m *Model) AnimFrom() int { return m.animFrom }

func (m *Model) clamp() {
	if len(m.items) == 0 {
		m.selected = 0
		m.animFrom = 0
		return
	}
	if m.selected >= len(m.items) {
		m.selected = len(m.items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.animFrom < 0 || m.animFrom >= len(m.items) {
		m.animFrom = m.selected
	}
}
