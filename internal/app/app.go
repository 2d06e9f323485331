package app

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/config"
	"github.com/llzware/llzdeck/internal/display"
	"github.com/llzware/llzdeck/internal/input"
	"github.com/llzware/llzdeck/internal/menu"
	"github.com/llzware/llzdeck/internal/notify"
	"github.com/llzware/llzdeck/internal/plugin"
	"github.com/llzware/llzdeck/internal/plugin/lua"
)

// hostState is what the shell is showing: the menu or a plugin.
type hostState int

const (
	stateMenu hostState = iota
	statePlugin
)

func (s hostState) String() string {
	switch s {
	case stateMenu:
		return "menu"
	case statePlugin:
		return "plugin"
	default:
		return "unknown"
	}
}

// Options configures a new Application.
type Options struct {
	// ConfigPath overrides the config file location. Empty falls back
	// to LLZDECK_CONFIG and the default path.
	ConfigPath string

	// Backend replaces the terminal backend, for tests.
	Backend display.Backend

	// Logger replaces the file logger, for tests.
	Logger *zap.SugaredLogger

	// Version is stamped into the boot log line.
	Version string
}

// Application is the deck shell: config, display, plugins, menu, and
// the frame loop that drives them.
type Application struct {
	opts Options

	config  *config.Config
	watcher *config.Watcher
	log     *zap.SugaredLogger

	backend display.Backend
	frame   *display.Frame

	queue     *notify.Queue
	collector *input.Collector
	host      *hostControl

	registry   *plugin.Registry
	unsub      func()
	visibility *plugin.Visibility
	snapshot   *plugin.Snapshot
	lastScan   time.Time

	menu      *menu.Model
	themes    *menu.Themes
	theme     menu.Renderer
	themeName string

	// Frame loop state, owned by the loop goroutine.
	state         hostState
	active        *plugin.Record
	activeCtx     *api.Context
	menuStale     bool
	pendingLaunch string
	frameBudget   time.Duration
	ticker        *time.Ticker

	metrics       *Metrics
	showMetrics   bool
	lastMemSample time.Time

	running   atomic.Bool
	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
}

// New builds an Application from the given options. Components come up
// in dependency order; on failure the ones already up are torn down
// and a ComponentError identifies the step that failed.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		state:   stateMenu,
		done:    make(chan struct{}),
		metrics: NewMetrics(),
	}

	b := newBootstrapper(app, opts)
	if err := b.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrapper handles component initialization with cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order. On failure
// it tears down the already-initialized components in reverse.
func (b *bootstrapper) bootstrap() error {
	var err error

	// 1. Config, first so later steps can read it
	if err = b.initConfig(); err != nil {
		b.cleanup()
		return err
	}

	// 2. Logging, to the file the config names
	if err = b.initLogging(); err != nil {
		b.cleanup()
		return err
	}

	// 3. Config watcher for live reload
	if err = b.initWatcher(); err != nil {
		b.cleanup()
		return err
	}

	// 4. Display backend and frame
	if err = b.initDisplay(); err != nil {
		b.cleanup()
		return err
	}

	// 5. Notification queue and input collector
	if err = b.initNotify(); err != nil {
		b.cleanup()
		return err
	}

	// 6. Plugin drivers, registry, initial scan
	if err = b.initRegistry(); err != nil {
		b.cleanup()
		return err
	}

	// 7. Visibility, menu model, themes
	if err = b.initMenu(); err != nil {
		b.cleanup()
		return err
	}

	// 8. Directory snapshot and persisted UI state
	if err = b.initState(); err != nil {
		b.cleanup()
		return err
	}

	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.opts.ConfigPath)
	if err != nil {
		return NewComponentError("config", "load", err)
	}
	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

func (b *bootstrapper) initLogging() error {
	log := b.opts.Logger
	if log == nil {
		var err error
		log, err = NewLogger(b.app.config.Log.Level, b.app.config.Log.File)
		if err != nil {
			return NewComponentError("logging", "setup", err)
		}
	}
	b.app.log = log
	SetLogger(log)

	version := b.opts.Version
	if version == "" {
		version = "dev"
	}
	log.Infow("llzdeck starting",
		"version", version,
		"config", b.app.config.Path(),
		"plugins_dir", b.app.config.Deck.PluginsDir,
		"theme", b.app.config.Deck.Theme,
		"fps", b.app.config.Deck.FPS,
	)

	b.initOrder = append(b.initOrder, "logging")
	return nil
}

func (b *bootstrapper) initWatcher() error {
	watcher, err := config.NewWatcher(b.app.config)
	if err != nil {
		return NewComponentError("config", "watch", err)
	}
	b.app.watcher = watcher
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

func (b *bootstrapper) initDisplay() error {
	backend := b.opts.Backend
	if backend == nil {
		var err error
		backend, err = display.NewTerminal()
		if err != nil {
			return NewComponentError("display", "open", err)
		}
	}
	b.app.backend = backend

	// Placeholder size until Run initializes the backend.
	b.app.frame = display.NewFrame(80, 24)

	b.initOrder = append(b.initOrder, "display")
	return nil
}

func (b *bootstrapper) initNotify() error {
	b.app.queue = notify.NewQueue()
	b.app.collector = input.New()
	b.app.host = newHostControl(b.app.log)
	b.initOrder = append(b.initOrder, "notify")
	return nil
}

func (b *bootstrapper) initRegistry() error {
	app := b.app

	app.registry = plugin.New(
		plugin.WithDrivers(plugin.NewNativeDriver(), lua.NewDriver(lua.WithLogger(app.log))),
		plugin.WithLogger(app.log),
	)
	app.unsub = app.registry.Subscribe(app.onRegistryEvent)

	// A broken plugin directory leaves the shell up with an empty menu.
	if err := app.registry.LoadDir(app.config.Deck.PluginsDir); err != nil {
		app.log.Warnw("initial plugin scan failed",
			"dir", app.config.Deck.PluginsDir, "error", err)
		app.queue.Push(api.Notification{
			Title: "Plugin scan failed",
			Body:  err.Error(),
			Level: api.LevelError,
		})
	}

	b.initOrder = append(b.initOrder, "registry")
	return nil
}

func (b *bootstrapper) initMenu() error {
	app := b.app

	vis, err := plugin.LoadVisibility(app.config.VisibilityPath())
	if err != nil {
		app.log.Warnw("visibility load failed", "error", err)
		vis = plugin.NewVisibility()
	}
	app.visibility = vis

	app.menu = menu.NewModel()
	app.themes = menu.DefaultThemes()
	app.setTheme(app.config.Deck.Theme)
	app.rebuildMenu()

	b.initOrder = append(b.initOrder, "menu")
	return nil
}

func (b *bootstrapper) initState() error {
	app := b.app

	snap, err := plugin.TakeSnapshot(app.config.Deck.PluginsDir)
	if err != nil {
		app.log.Warnw("plugin directory snapshot failed",
			"dir", app.config.Deck.PluginsDir, "error", err)
	}
	app.snapshot = snap
	app.lastScan = time.Now()

	app.restoreUIState(LoadUIState(app.config.StatePath()))

	b.initOrder = append(b.initOrder, "state")
	return nil
}

// cleanup tears down initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

func (b *bootstrapper) cleanupComponent(component string) {
	app := b.app
	switch component {
	case "registry":
		if app.unsub != nil {
			app.unsub()
			app.unsub = nil
		}
		if app.registry != nil {
			_ = app.registry.Close()
			app.registry = nil
		}
	case "watcher":
		if app.watcher != nil {
			app.watcher.Close()
			app.watcher = nil
		}
	case "logging":
		if app.log != nil {
			_ = app.log.Sync()
		}
	case "display":
		app.backend = nil
		app.frame = nil
	case "notify":
		app.queue = nil
		app.collector = nil
		app.host = nil
	case "menu":
		app.menu = nil
		app.themes = nil
		app.theme = nil
	case "config", "state":
	}
}

// onRegistryEvent turns registry failures into notifications. Loads
// and unloads are summarized by the rescan step instead, so a busy
// plugin directory does not flood the banner.
func (a *Application) onRegistryEvent(ev plugin.Event) {
	switch ev.Type {
	case plugin.EventLoadFailed:
		a.queue.Push(api.Notification{
			Title: "Plugin failed to load",
			Body:  filepath.Base(ev.Path),
			Level: api.LevelError,
		})
	case plugin.EventError:
		a.queue.Push(api.Notification{
			Title: "Plugin error",
			Body:  ev.Name,
			Level: api.LevelError,
		})
	}
}

// setTheme switches the menu renderer. Unknown names fall back to the
// default theme with a warning banner.
func (a *Application) setTheme(name string) {
	renderer, err := a.themes.Get(name)
	if err != nil {
		a.log.Warnw("unknown theme", "name", name, "fallback", menu.DefaultTheme)
		a.queue.Push(api.Notification{
			Title: "Unknown theme",
			Body:  name + ", using " + menu.DefaultTheme,
			Level: api.LevelWarn,
		})
		name = menu.DefaultTheme
		renderer, _ = a.themes.Get(name)
	}
	a.theme = renderer
	a.themeName = strings.ToLower(name)
	a.log.Infow("theme set", "name", a.themeName)
}

// cycleTheme advances to the next registered theme.
func (a *Application) cycleTheme() {
	a.setTheme(a.themes.Next(a.themeName))
}

// rebuildMenu recomputes the menu from the registry and visibility.
func (a *Application) rebuildMenu() {
	vis := a.visibility
	if a.config.Menu.ShowHidden {
		vis = vis.Unhidden()
	}
	a.menu.Rebuild(a.registry.Records(), vis, a.config.Menu.Folders)
	a.menuStale = false
}

// restoreUIState applies persisted theme and menu position. A stale
// state file is applied best-effort: unknown themes and vanished
// entries are simply skipped.
func (a *Application) restoreUIState(st UIState) {
	if st.Theme != "" {
		if _, err := a.themes.Get(st.Theme); err == nil {
			a.setTheme(st.Theme)
		}
	}
	if st.Folder != "" {
		for _, it := range a.menu.Items() {
			if it.IsFolder && strings.EqualFold(string(it.Category), st.Folder) {
				if a.menu.SelectByName(it.Name) {
					a.menu.Select()
				}
				break
			}
		}
	}
	if st.Selected != "" {
		a.menu.SelectByName(st.Selected)
	}
}

// captureUIState records the live theme and menu position for the
// state file.
func (a *Application) captureUIState() UIState {
	st := UIState{
		Theme:  a.themeName,
		Folder: string(a.menu.Folder()),
	}
	if it, ok := a.menu.Selected(); ok {
		st.Selected = it.Name
	}
	return st
}

// Shutdown asks the frame loop to exit. Safe to call from any
// goroutine, including signal handlers.
func (a *Application) Shutdown() error {
	if !a.running.Load() {
		return ErrNotRunning
	}
	a.doneOnce.Do(func() { close(a.done) })
	return nil
}

// Close releases what the bootstrap acquired. Run calls it on the way
// out; call it directly only on an Application that never ran.
func (a *Application) Close() error {
	a.closeOnce.Do(func() {
		var errs ErrorList
		if a.unsub != nil {
			a.unsub()
			a.unsub = nil
		}
		if a.registry != nil {
			errs.Add(a.registry.Close())
		}
		if a.watcher != nil {
			a.watcher.Close()
		}
		if a.log != nil {
			_ = a.log.Sync()
		}
		a.closeErr = errs.Err()
	})
	return a.closeErr
}

// IsRunning reports whether the frame loop is active.
func (a *Application) IsRunning() bool {
	return a.running.Load()
}

// Config returns the active configuration.
func (a *Application) Config() *config.Config {
	return a.config
}

// Registry returns the plugin registry.
func (a *Application) Registry() *plugin.Registry {
	return a.registry
}

// Menu returns the menu model. It is owned by the frame loop; read it
// only when the loop is not running.
func (a *Application) Menu() *menu.Model {
	return a.menu
}

// Notifications returns the notification queue.
func (a *Application) Notifications() *notify.Queue {
	return a.queue
}

// Metrics returns the application's metrics instance.
func (a *Application) Metrics() *Metrics {
	if a.metrics == nil {
		return GetMetrics()
	}
	return a.metrics
}

// ThemeName returns the active theme's name.
func (a *Application) ThemeName() string {
	return a.themeName
}
