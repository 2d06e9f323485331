package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// appDir is the per-user directory name under the XDG base directories.
const appDir = "llzdeck"

// Frame rate bounds accepted by Validate.
const (
	MinFPS = 1
	MaxFPS = 240
)

// Duration decodes TOML strings like "2s" or "450ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DeckConfig is the [deck] section: where plugins live and how the
// shell runs them.
type DeckConfig struct {
	// PluginsDir is the directory scanned for plugins.
	PluginsDir string `toml:"plugins_dir"`

	// Theme is the menu theme name.
	Theme string `toml:"theme"`

	// FPS is the frame rate the main loop ticks at.
	FPS int `toml:"fps"`

	// ScanInterval is how often the plugin directory is checked for
	// changes while the menu is showing.
	ScanInterval Duration `toml:"scan_interval"`
}

// MenuConfig is the [menu] section.
type MenuConfig struct {
	// Folders groups plugins into category folders when they span more
	// than one category.
	Folders bool `toml:"folders"`

	// ShowHidden ignores the visibility file's hidden flags.
	ShowHidden bool `toml:"show_hidden"`
}

// LogConfig is the [log] section. Logs always go to a file because the
// terminal belongs to the renderer.
type LogConfig struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string `toml:"level"`

	// File is the log file path.
	File string `toml:"file"`
}

// Config is the host configuration.
type Config struct {
	Deck DeckConfig `toml:"deck"`
	Menu MenuConfig `toml:"menu"`
	Log  LogConfig  `toml:"log"`

	// path is the file this config was loaded from, or would have been
	// had it existed.
	path string
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Deck: DeckConfig{
			PluginsDir:   filepath.Join(dataDir(), "plugins"),
			Theme:        "carthing",
			FPS:          60,
			ScanInterval: Duration(2 * time.Second),
		},
		Menu: MenuConfig{
			Folders: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(cacheDir(), appDir+".log"),
		},
		path: DefaultPath(),
	}
}

// Load reads the config file at path, decoding over Default. An empty
// path falls back to LLZDECK_CONFIG and then DefaultPath; a missing
// file leaves the defaults standing. LLZDECK_* environment variables
// override the file, and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("LLZDECK_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, newParseError(path, err)
		}
	case os.IsNotExist(err):
		// Defaults stand.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv copies LLZDECK_* overrides into the config. Values are
// parsed strictly: a malformed override is a startup error, not a
// silently ignored setting.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("LLZDECK_PLUGINS_DIR"); ok {
		c.Deck.PluginsDir = v
	}
	if v, ok := os.LookupEnv("LLZDECK_THEME"); ok {
		c.Deck.Theme = v
	}
	if v, ok := os.LookupEnv("LLZDECK_FPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LLZDECK_FPS: %w", err)
		}
		c.Deck.FPS = n
	}
	if v, ok := os.LookupEnv("LLZDECK_SCAN_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLZDECK_SCAN_INTERVAL: %w", err)
		}
		c.Deck.ScanInterval = Duration(d)
	}
	if v, ok := os.LookupEnv("LLZDECK_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("LLZDECK_LOG_FILE"); ok {
		c.Log.File = v
	}
	return nil
}

// Validate rejects values the host cannot run with.
func (c *Config) Validate() error {
	if c.Deck.PluginsDir == "" {
		return &ValidationError{Field: "deck.plugins_dir", Message: "must not be empty"}
	}
	if c.Deck.Theme == "" {
		return &ValidationError{Field: "deck.theme", Message: "must not be empty"}
	}
	if c.Deck.FPS < MinFPS || c.Deck.FPS > MaxFPS {
		return &ValidationError{
			Field:   "deck.fps",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinFPS, MaxFPS, c.Deck.FPS),
		}
	}
	if c.Deck.ScanInterval <= 0 {
		return &ValidationError{Field: "deck.scan_interval", Message: "must be positive"}
	}
	return nil
}

// Path returns the config file location this config came from.
func (c *Config) Path() string { return c.path }

// VisibilityPath returns the visibility file, kept next to the config.
func (c *Config) VisibilityPath() string {
	return filepath.Join(filepath.Dir(c.path), "visibility.toml")
}

// StatePath returns where persisted UI state lives.
func (c *Config) StatePath() string {
	return filepath.Join(dataDir(), "state.json")
}

// DefaultPath returns the standard config file location,
// ~/.config/llzdeck/deck.toml on Linux.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDir, "deck.toml")
	}
	return filepath.Join(appDir, "deck.toml")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appDir)
	}
	return appDir
}

func cacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appDir)
	}
	return appDir
}
