package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVisibilityMissing(t *testing.T) {
	v, err := LoadVisibility(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadVisibility() error = %v", err)
	}
	if v.Len() != 0 {
		t.Errorf("Len() = %d, want 0", v.Len())
	}
	if v.Hidden("anything") {
		t.Error("Hidden() = true for empty table")
	}
	if v.Order("anything") != 0 {
		t.Errorf("Order() = %d, want 0", v.Order("anything"))
	}
}

func TestLoadVisibility(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visibility.toml")
	content := `
[plugins.clock]
hidden = false
order = 2

[plugins."Disk Usage"]
hidden = true

[plugins.weather]
order = 1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	v, err := LoadVisibility(path)
	if err != nil {
		t.Fatalf("LoadVisibility() error = %v", err)
	}
	if v.Len() != 3 {
		t.Errorf("Len() = %d, want 3", v.Len())
	}
	if !v.Hidden("disk usage") {
		t.Error("Hidden(disk usage) = false, want true")
	}
	if v.Hidden("clock") {
		t.Error("Hidden(clock) = true, want false")
	}
	if v.Order("CLOCK") != 2 {
		t.Errorf("Order(CLOCK) = %d, want 2", v.Order("CLOCK"))
	}
	if v.Order("weather") != 1 {
		t.Errorf("Order(weather) = %d, want 1", v.Order("weather"))
	}
	if _, ok := v.Entry("absent"); ok {
		t.Error("Entry(absent) found")
	}
}

func TestLoadVisibilityBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visibility.toml")
	if err := os.WriteFile(path, []byte("[plugins\nbroken = "), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadVisibility(path); err == nil {
		t.Error("LoadVisibility() error = nil, want parse error")
	}
}

func TestSaveVisibilityRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "visibility.toml")

	v := NewVisibility()
	v.Set("Clock", VisibilityEntry{Order: 3})
	v.Set("secret", VisibilityEntry{Hidden: true})

	if err := SaveVisibility(path, v); err != nil {
		t.Fatalf("SaveVisibility() error = %v", err)
	}

	loaded, err := LoadVisibility(path)
	if err != nil {
		t.Fatalf("LoadVisibility() error = %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Len() = %d, want 2", loaded.Len())
	}
	if loaded.Order("clock") != 3 {
		t.Errorf("Order(clock) = %d, want 3", loaded.Order("clock"))
	}
	if !loaded.Hidden("SECRET") {
		t.Error("Hidden(SECRET) = false, want true")
	}
}
