package app

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/config"
	"github.com/llzware/llzdeck/internal/display"
	"github.com/llzware/llzdeck/internal/menu"
	"github.com/llzware/llzdeck/internal/plugin"
)

const (
	// eventBuffer sizes the input pump channel. Overflow drops events
	// rather than blocking the pump.
	eventBuffer = 100

	// maxFrameDelta caps dt after a stall so animations jump at most
	// a quarter second instead of fast-forwarding.
	maxFrameDelta = 0.25

	// slowFrameFactor flags frames exceeding this multiple of the
	// frame budget.
	slowFrameFactor = 2

	// shutdownTimeout bounds teardown at quit.
	shutdownTimeout = 5 * time.Second
)

// Run drives the frame loop until quit or Shutdown. It returns ErrQuit
// when the user asked to exit, nil when Shutdown was called, and the
// underlying error when the loop died.
func (a *Application) Run() error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if err := a.backend.Init(); err != nil {
		a.running.Store(false)
		return NewComponentError("display", "init", err)
	}

	width, height := a.backend.Size()
	a.frame.Resize(width, height)

	err := a.loop()

	// Order matters: running false first so the pump exits when the
	// backend shutdown unblocks its poll.
	a.running.Store(false)
	a.quit()

	return err
}

// loop ticks at the configured FPS. All shell state is mutated here
// and nowhere else.
func (a *Application) loop() error {
	events := a.startInputPump()

	a.frameBudget = time.Second / time.Duration(a.config.Deck.FPS)
	a.ticker = time.NewTicker(a.frameBudget)
	defer a.ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-a.done:
			return nil
		case <-a.ticker.C:
			now := time.Now()
			dt := now.Sub(last).Seconds()
			last = now
			if dt > maxFrameDelta {
				dt = maxFrameDelta
			}
			if err := a.tick(events, dt); err != nil {
				return err
			}
		}
	}
}

// startInputPump forwards backend events to the loop. The pump blocks
// in PollEvent; backend shutdown unblocks it at quit.
func (a *Application) startInputPump() <-chan display.Event {
	events := make(chan display.Event, eventBuffer)

	go func() {
		for a.running.Load() {
			ev := a.backend.PollEvent()
			if !a.running.Load() {
				return
			}
			if ev.Type == display.EventNone {
				continue
			}
			select {
			case events <- ev:
			case <-a.done:
				return
			default:
				a.metrics.RecordInputDropped()
			}
		}
	}()

	return events
}

// tick is one frame: drain inputs and config changes, step the active
// state, advance animations, draw, flush.
func (a *Application) tick(events <-chan display.Event, dt float64) error {
	timer := StartTimer()

	if err := a.drainEvents(events); err != nil {
		return err
	}
	a.drainConfigChanges()

	in := a.collector.Frame()
	switch a.state {
	case stateMenu:
		a.stepMenu(in, dt)
	case statePlugin:
		a.stepPlugin(in, dt)
	}

	a.queue.Update(dt)

	drawTimer := StartTimer()
	a.draw()
	a.frame.Flush(a.backend)
	a.metrics.RecordDraw(drawTimer.Elapsed())

	elapsed := timer.Elapsed()
	a.metrics.RecordFrame(elapsed)
	if elapsed > slowFrameFactor*a.frameBudget {
		a.metrics.RecordSlowFrame()
		a.log.Debugw("slow frame",
			"elapsed", elapsed,
			"budget", a.frameBudget,
			"state", a.state.String(),
			"plugin", a.activeName(),
		)
	}
	if a.showMetrics && time.Since(a.lastMemSample) >= time.Second {
		a.metrics.SampleMemory()
		a.lastMemSample = time.Now()
	}
	return nil
}

// drainEvents feeds pending backend events to the collector, handling
// the shell-reserved keys itself.
func (a *Application) drainEvents(events <-chan display.Event) error {
	for {
		select {
		case ev := <-events:
			switch ev.Type {
			case display.EventKey:
				switch ev.Key {
				case display.KeyCtrlC:
					return ErrQuit
				case display.KeyF8:
					a.cycleTheme()
				case display.KeyF9:
					a.showMetrics = !a.showMetrics
				default:
					a.collector.Handle(ev)
				}
			case display.EventResize:
				a.frame.Resize(ev.Width, ev.Height)
				a.log.Debugw("resize", "width", ev.Width, "height", ev.Height)
			default:
				a.collector.Handle(ev)
			}
		default:
			return nil
		}
	}
}

// drainConfigChanges applies debounced config and visibility edits.
func (a *Application) drainConfigChanges() {
	for {
		select {
		case change := <-a.watcher.Changes():
			switch change {
			case config.ChangeConfig:
				a.reloadConfig()
			case config.ChangeVisibility:
				a.reloadVisibility()
			}
		case err := <-a.watcher.Errors():
			a.log.Warnw("config watcher error", "error", err)
		default:
			return
		}
	}
}

func (a *Application) reloadConfig() {
	cfg, err := config.Load(a.config.Path())
	if err != nil {
		a.log.Warnw("config reload failed", "error", err)
		a.queue.Push(api.Notification{
			Title: "Config error",
			Body:  err.Error(),
			Level: api.LevelError,
		})
		return
	}

	prev := a.config
	a.config = cfg
	a.log.Infow("config reloaded", "path", cfg.Path())

	if cfg.Deck.Theme != prev.Deck.Theme {
		a.setTheme(cfg.Deck.Theme)
	}
	if cfg.Deck.FPS != prev.Deck.FPS && a.ticker != nil {
		a.frameBudget = time.Second / time.Duration(cfg.Deck.FPS)
		a.ticker.Reset(a.frameBudget)
		a.log.Infow("frame rate changed", "fps", cfg.Deck.FPS)
	}
	if cfg.Deck.PluginsDir != prev.Deck.PluginsDir {
		a.movePluginsDir(prev.Deck.PluginsDir, cfg.Deck.PluginsDir)
	}
	if cfg.Menu.Folders != prev.Menu.Folders || cfg.Menu.ShowHidden != prev.Menu.ShowHidden {
		a.rebuildMenu()
	}
}

// movePluginsDir swaps the registry over to a new plugin directory.
func (a *Application) movePluginsDir(oldDir, newDir string) {
	if a.active != nil {
		a.closeActive()
	}
	dropped := a.registry.UnloadDir(oldDir)
	if err := a.registry.LoadDir(newDir); err != nil {
		a.log.Warnw("plugin scan failed", "dir", newDir, "error", err)
	}
	a.retakeSnapshot()
	a.rebuildMenu()
	a.log.Infow("plugin directory moved",
		"from", oldDir, "to", newDir,
		"dropped", dropped, "loaded", a.registry.Count())
}

func (a *Application) reloadVisibility() {
	vis, err := plugin.LoadVisibility(a.config.VisibilityPath())
	if err != nil {
		a.log.Warnw("visibility reload failed", "error", err)
		return
	}
	a.visibility = vis
	a.rebuildMenu()
	a.log.Infow("visibility reloaded", "entries", vis.Len())
}

// stepMenu advances the menu state: directory rescan on its interval,
// then navigation.
func (a *Application) stepMenu(in api.Input, dt float64) {
	a.maybeRescan()

	if a.menuStale {
		a.rebuildMenu()
	}

	if in.Dial != 0 {
		a.menu.Move(in.Dial)
	} else if in.Next() {
		a.menu.Move(1)
	} else if in.Prev() {
		a.menu.Move(-1)
	}

	switch {
	case in.Select:
		if action, name := a.menu.Select(); action == menu.ActionLaunch {
			a.launch(name)
		}
	case in.Back:
		a.menu.Back()
	}

	a.menu.Update(dt)
}

// maybeRescan polls the plugin directory for changes every
// ScanInterval while the menu is showing.
func (a *Application) maybeRescan() {
	if time.Since(a.lastScan) < time.Duration(a.config.Deck.ScanInterval) {
		return
	}
	a.lastScan = time.Now()

	if a.snapshot != nil && !a.snapshot.Changed() {
		return
	}

	changes, err := a.registry.Refresh(a.config.Deck.PluginsDir)
	if err != nil {
		a.log.Warnw("plugin rescan failed",
			"dir", a.config.Deck.PluginsDir, "error", err)
		return
	}
	a.retakeSnapshot()

	if changes > 0 {
		a.rebuildMenu()
		body := fmt.Sprintf("%d change", changes)
		if changes != 1 {
			body += "s"
		}
		a.queue.Push(api.Notification{
			Title: "Plugins updated",
			Body:  body,
			Level: api.LevelInfo,
		})
		a.log.Infow("plugin rescan", "changes", changes, "plugins", a.registry.Count())
	}
}

func (a *Application) retakeSnapshot() {
	snap, err := plugin.TakeSnapshot(a.config.Deck.PluginsDir)
	if err != nil {
		a.log.Warnw("plugin directory snapshot failed",
			"dir", a.config.Deck.PluginsDir, "error", err)
		a.snapshot = nil
		return
	}
	a.snapshot = snap
}

// launch activates the named plugin and hands it the screen.
func (a *Application) launch(name string) {
	rec, ok := a.registry.Get(name)
	if !ok {
		a.queue.Push(api.Notification{
			Title: "Plugin not found",
			Body:  name,
			Level: api.LevelWarn,
		})
		return
	}
	if !rec.State.IsUsable() {
		a.queue.Push(api.Notification{
			Title: "Plugin unavailable",
			Body:  fmt.Sprintf("%s is %s", rec.Name(), rec.State),
			Level: api.LevelWarn,
		})
		return
	}

	width, height := a.frame.Size()
	a.host.reset(rec.Name())
	ctx := api.NewContext(width, height, a.host)

	if rec.API.Init != nil {
		if err := a.safeCall(rec.Name(), "init", func() { rec.API.Init(ctx) }); err != nil {
			a.registry.SetError(rec.Name(), err)
			a.host.reset("")
			return
		}
	}

	a.active = rec
	a.activeCtx = ctx
	a.state = statePlugin
	a.registry.SetState(rec.Name(), plugin.StateActive)
	a.log.Infow("plugin launched", "name", rec.Name())

	a.applyHostRequests()
}

// stepPlugin advances the active plugin. Hooks run recovered; a panic
// fails the plugin and returns to the menu.
func (a *Application) stepPlugin(in api.Input, dt float64) {
	rec := a.active
	if rec == nil {
		a.state = stateMenu
		return
	}

	if in.Back && !rec.API.HandlesBack {
		a.closeActive()
		return
	}

	if err := a.safeCall(rec.Name(), "update", func() { rec.API.Update(in, dt) }); err != nil {
		a.failActive(err)
		return
	}

	wantsClose := false
	if rec.API.WantsClose != nil {
		if err := a.safeCall(rec.Name(), "wants_close", func() { wantsClose = rec.API.WantsClose() }); err != nil {
			a.failActive(err)
			return
		}
	}

	a.applyHostRequests()

	if next := a.pendingLaunch; next != "" {
		a.pendingLaunch = ""
		a.closeActive()
		a.launch(next)
		return
	}
	if wantsClose {
		a.closeActive()
	}
}

// applyHostRequests drains what the plugin asked for during its hooks.
func (a *Application) applyHostRequests() {
	requested, rebuild, notes := a.host.take()
	for _, n := range notes {
		a.queue.Push(n)
	}
	if rebuild {
		a.menuStale = true
	}
	if requested != "" {
		a.pendingLaunch = requested
	}
}

// closeActive shuts the active plugin down and returns to the menu.
func (a *Application) closeActive() {
	rec := a.active
	if rec == nil {
		return
	}

	if rec.API.Shutdown != nil {
		if err := a.safeCall(rec.Name(), "shutdown", func() { rec.API.Shutdown() }); err != nil {
			a.registry.SetError(rec.Name(), err)
			a.finishClose(rec)
			return
		}
	}
	a.registry.SetState(rec.Name(), plugin.StateLoaded)
	a.finishClose(rec)
}

// failActive closes a plugin that panicked, skipping its Shutdown hook
// since its state is suspect. Notifications it queued before failing
// still show.
func (a *Application) failActive(err error) {
	rec := a.active
	if rec == nil {
		return
	}
	_, rebuild, notes := a.host.take()
	for _, n := range notes {
		a.queue.Push(n)
	}
	if rebuild {
		a.menuStale = true
	}
	a.pendingLaunch = ""

	a.registry.SetError(rec.Name(), err)
	a.finishClose(rec)
}

// finishClose lands the shell back on the menu with the closed
// plugin's entry selected.
func (a *Application) finishClose(rec *plugin.Record) {
	a.active = nil
	a.activeCtx = nil
	a.host.reset("")
	a.state = stateMenu
	if a.menuStale {
		a.rebuildMenu()
	}
	a.menu.SelectByName(rec.Name())
	a.log.Infow("plugin closed", "name", rec.Name())
}

// safeCall runs one plugin hook, converting a panic into an error.
func (a *Application) safeCall(name, hook string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
			a.log.Errorw("plugin panicked", "name", name, "hook", hook, "panic", r)
		}
	}()
	fn()
	return nil
}

func (a *Application) activeName() string {
	if a.active == nil {
		return ""
	}
	return a.active.Name()
}

// quit tears the shell down after the loop exits: close the active
// plugin, persist UI state, restore the terminal, then close everything
// else under a deadline.
func (a *Application) quit() {
	a.closeActive()

	if err := SaveUIState(a.config.StatePath(), a.captureUIState()); err != nil {
		a.log.Warnw("ui state save failed", "error", err)
	}

	// Backend first: shutdown unblocks the input pump's poll.
	a.backend.Shutdown()

	done := make(chan error, 1)
	go func() { done <- a.Close() }()
	select {
	case err := <-done:
		if err != nil {
			a.log.Warnw("shutdown finished with errors", "error", err)
		}
	case <-time.After(shutdownTimeout):
		a.log.Errorw("shutdown timed out", "timeout", shutdownTimeout, "error", ErrShutdownTimeout)
	}
	_ = a.log.Sync()
}
