package lua

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest inside a directory plugin.
const ManifestFile = "plugin.yaml"

// DefaultMain is the entry script used when a manifest names none.
const DefaultMain = "main.lua"

// Manifest describes a directory plugin. Every field is optional;
// metadata the manifest leaves empty falls back to the script's plugin
// table, then to the directory name.
type Manifest struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Main        string         `yaml:"main"`
	HandlesBack bool           `yaml:"handles_back"`
	Options     map[string]any `yaml:"options"`
}

// LoadManifest reads a plugin.yaml. A missing file yields an empty
// manifest, not an error, since the manifest is optional.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// MainPath resolves the entry script inside dir, rejecting paths that
// escape it.
func (m *Manifest) MainPath(dir string) (string, error) {
	main := m.Main
	if main == "" {
		main = DefaultMain
	}
	if filepath.IsAbs(main) || !filepath.IsLocal(main) {
		return "", fmt.Errorf("%q: %w", main, ErrMainOutsideDir)
	}
	return filepath.Join(dir, main), nil
}
