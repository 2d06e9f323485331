package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// VisibilityEntry is one plugin's menu settings.
type VisibilityEntry struct {
	// Hidden removes the plugin from the menu without unloading it.
	Hidden bool `toml:"hidden"`

	// Order pins the plugin's menu position. Entries with a nonzero
	// order sort ascending ahead of everything else; entries sharing
	// an order, and entries with order 0, keep alphabetical order.
	Order int `toml:"order"`
}

// visibilityFile is the on-disk shape:
//
//	[plugins.clock]
//	hidden = false
//	order = 1
//
//	[plugins."disk usage"]
//	hidden = true
type visibilityFile struct {
	Plugins map[string]VisibilityEntry `toml:"plugins"`
}

// Visibility controls which plugins the menu shows and in what order.
// Lookups are case-insensitive; plugins without an entry are visible
// with order 0.
type Visibility struct {
	entries map[string]VisibilityEntry
}

// NewVisibility returns an empty visibility table.
func NewVisibility() *Visibility {
	return &Visibility{entries: make(map[string]VisibilityEntry)}
}

// LoadVisibility reads the visibility file at path. A missing file
// yields an empty table, not an error.
func LoadVisibility(path string) (*Visibility, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewVisibility(), nil
		}
		return nil, fmt.Errorf("read visibility file %s: %w", path, err)
	}

	var file visibilityFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse visibility file %s: %w", path, err)
	}

	v := &Visibility{entries: make(map[string]VisibilityEntry, len(file.Plugins))}
	for name, entry := range file.Plugins {
		v.entries[strings.ToLower(name)] = entry
	}
	return v, nil
}

// SaveVisibility writes the table to path, creating parent directories
// as needed. Keys are written lowercased, matching how lookups work.
func SaveVisibility(path string, v *Visibility) error {
	file := visibilityFile{Plugins: map[string]VisibilityEntry{}}
	if v != nil {
		for name, entry := range v.entries {
			file.Plugins[name] = entry
		}
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode visibility file: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write visibility file %s: %w", path, err)
	}
	return nil
}

// Set stores an entry for a plugin name.
func (v *Visibility) Set(name string, entry VisibilityEntry) {
	if v.entries == nil {
		v.entries = make(map[string]VisibilityEntry)
	}
	v.entries[strings.ToLower(name)] = entry
}

// Entry returns the settings for a plugin name.
func (v *Visibility) Entry(name string) (VisibilityEntry, bool) {
	if v == nil {
		return VisibilityEntry{}, false
	}
	entry, ok := v.entries[strings.ToLower(name)]
	return entry, ok
}

// Hidden reports whether the plugin should be left off the menu.
func (v *Visibility) Hidden(name string) bool {
	entry, ok := v.Entry(name)
	return ok && entry.Hidden
}

// Order returns the plugin's pinned menu position, 0 when unpinned.
func (v *Visibility) Order(name string) int {
	entry, _ := v.Entry(name)
	return entry.Order
}

// Unhidden returns a copy with every hidden flag cleared. Order pins
// are kept, so a menu showing hidden plugins still honors them.
func (v *Visibility) Unhidden() *Visibility {
	out := NewVisibility()
	if v == nil {
		return out
	}
	for name, entry := range v.entries {
		entry.Hidden = false
		out.entries[name] = entry
	}
	return out
}

// Len returns the number of entries.
func (v *Visibility) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}
