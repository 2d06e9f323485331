package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// UIState is the sliver of interface state that survives restarts:
// the active theme and where the menu selection was.
type UIState struct {
	Theme    string
	Selected string
	Folder   string
}

// LoadUIState reads the state file at path. A missing or malformed
// file yields a zero state; losing the menu position is not worth an
// error at boot.
func LoadUIState(path string) UIState {
	data, err := os.ReadFile(path)
	if err != nil {
		return UIState{}
	}
	if !gjson.ValidBytes(data) {
		return UIState{}
	}
	return UIState{
		Theme:    gjson.GetBytes(data, "theme").String(),
		Selected: gjson.GetBytes(data, "menu.selected").String(),
		Folder:   gjson.GetBytes(data, "menu.folder").String(),
	}
}

// SaveUIState writes the state file, creating its directory when
// needed.
func SaveUIState(path string, st UIState) error {
	out := []byte("{}")
	var err error
	for _, field := range []struct {
		path  string
		value string
	}{
		{"theme", st.Theme},
		{"menu.selected", st.Selected},
		{"menu.folder", st.Folder},
	} {
		out, err = sjson.SetBytes(out, field.path, field.value)
		if err != nil {
			return fmt.Errorf("encode ui state: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write ui state: %w", err)
	}
	return nil
}
