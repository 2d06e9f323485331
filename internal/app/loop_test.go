package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/display"
	"github.com/llzware/llzdeck/internal/plugin"
)

// fakeRecord builds a registry-shaped record without a driver behind
// it. The registry ignores state calls for names it does not know, so
// these exercise the loop's transitions in isolation.
func fakeRecord(name string, a *api.API) *plugin.Record {
	if a.Name == "" {
		a.Name = name
	}
	if a.Update == nil {
		a.Update = func(in api.Input, dt float64) {}
	}
	if a.Draw == nil {
		a.Draw = func(s api.Surface) {}
	}
	return &plugin.Record{API: a, State: plugin.StateLoaded}
}

// injectActive puts a record on screen as if launch had run.
func injectActive(app *Application, rec *plugin.Record) *api.Context {
	app.host.reset(rec.Name())
	ctx := api.NewContext(80, 24, app.host)
	app.active = rec
	app.activeCtx = ctx
	app.state = statePlugin
	return ctx
}

func TestLaunchAndBack(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})

	app.launch("hello")

	if app.state != statePlugin {
		t.Fatalf("state = %v, want plugin", app.state)
	}
	rec, _ := app.Registry().Get("hello")
	if rec.State != plugin.StateActive {
		t.Errorf("record state = %v, want active", rec.State)
	}

	app.stepPlugin(api.Input{Back: true}, 0.016)

	if app.state != stateMenu {
		t.Errorf("state = %v, want menu after Back", app.state)
	}
	if rec.State != plugin.StateLoaded {
		t.Errorf("record state = %v, want loaded after close", rec.State)
	}
	if it, ok := app.Menu().Selected(); !ok || it.Name != "hello" {
		t.Errorf("Selected = %+v ok=%v, want hello restored", it, ok)
	}
}

func TestLaunchUnknown(t *testing.T) {
	app, _ := testApp(t, nil)

	app.launch("ghost")

	if app.state != stateMenu {
		t.Errorf("state = %v, want menu", app.state)
	}
	if n, _, _, ok := app.queue.Active(); !ok || n.Title != "Plugin not found" {
		t.Errorf("notification = %+v ok=%v, want not-found banner", n, ok)
	}
}

func TestLaunchErroredPluginRefused(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})
	app.Registry().SetError("hello", errors.New("earlier crash"))

	app.launch("hello")

	if app.state != stateMenu {
		t.Errorf("state = %v, want menu", app.state)
	}
}

func TestLaunchInitPanic(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})
	rec, _ := app.Registry().Get("hello")
	rec.API.Init = func(ctx *api.Context) { panic("bad init") }

	app.launch("hello")

	if app.state != stateMenu {
		t.Errorf("state = %v, want menu after init panic", app.state)
	}
	if rec.State != plugin.StateError {
		t.Errorf("record state = %v, want error", rec.State)
	}
}

func TestStepPluginUpdatePanic(t *testing.T) {
	app, _ := testApp(t, nil)
	rec := fakeRecord("boom", &api.API{
		Update: func(in api.Input, dt float64) { panic("kaboom") },
	})
	injectActive(app, rec)

	app.stepPlugin(api.Input{}, 0.016)

	if app.state != stateMenu {
		t.Errorf("state = %v, want menu after panic", app.state)
	}
	if app.active != nil {
		t.Error("active record survived the panic")
	}
}

func TestStepPluginWantsClose(t *testing.T) {
	app, _ := testApp(t, nil)
	done := false
	rec := fakeRecord("oneshot", &api.API{
		Update:     func(in api.Input, dt float64) { done = true },
		WantsClose: func() bool { return done },
	})
	injectActive(app, rec)

	app.stepPlugin(api.Input{}, 0.016)

	if app.state != stateMenu {
		t.Errorf("state = %v, want menu after WantsClose", app.state)
	}
}

func TestStepPluginHandlesBack(t *testing.T) {
	app, _ := testApp(t, nil)
	var saw api.Input
	rec := fakeRecord("pager", &api.API{
		HandlesBack: true,
		Update:      func(in api.Input, dt float64) { saw = in },
	})
	injectActive(app, rec)

	app.stepPlugin(api.Input{Back: true}, 0.016)

	if app.state != statePlugin {
		t.Fatalf("state = %v, want plugin to stay up", app.state)
	}
	if !saw.Back {
		t.Error("Back press was not forwarded to Update")
	}
}

func TestStepPluginShutdownRuns(t *testing.T) {
	app, _ := testApp(t, nil)
	shutdowns := 0
	rec := fakeRecord("tidy", &api.API{
		Shutdown: func() { shutdowns++ },
	})
	injectActive(app, rec)

	app.stepPlugin(api.Input{Back: true}, 0.016)

	if shutdowns != 1 {
		t.Errorf("Shutdown ran %d times, want 1", shutdowns)
	}
}

func TestStepPluginPanicSkipsShutdown(t *testing.T) {
	app, _ := testApp(t, nil)
	shutdowns := 0
	rec := fakeRecord("boom", &api.API{
		Update:   func(in api.Input, dt float64) { panic("kaboom") },
		Shutdown: func() { shutdowns++ },
	})
	injectActive(app, rec)

	app.stepPlugin(api.Input{}, 0.016)

	if shutdowns != 0 {
		t.Errorf("Shutdown ran %d times after a panic, want 0", shutdowns)
	}
}

func TestHostNotify(t *testing.T) {
	app, _ := testApp(t, nil)
	var ctx *api.Context
	rec := fakeRecord("talker", &api.API{
		Update: func(in api.Input, dt float64) {
			ctx.Notify(api.Notification{Title: "Saved", Body: "all good", Level: api.LevelSuccess})
		},
	})
	ctx = injectActive(app, rec)

	app.stepPlugin(api.Input{}, 0.016)

	if app.state != statePlugin {
		t.Fatalf("state = %v, want plugin still up", app.state)
	}
	n, _, _, ok := app.queue.Active()
	if !ok || n.Title != "Saved" || n.Level != api.LevelSuccess {
		t.Errorf("notification = %+v ok=%v, want Saved banner", n, ok)
	}
}

func TestHostRequestPluginChains(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})
	var ctx *api.Context
	rec := fakeRecord("jumper", &api.API{
		Update: func(in api.Input, dt float64) { ctx.RequestPlugin("hello") },
	})
	ctx = injectActive(app, rec)

	app.stepPlugin(api.Input{}, 0.016)

	if app.state != statePlugin {
		t.Fatalf("state = %v, want plugin", app.state)
	}
	if got := app.activeName(); got != "hello" {
		t.Errorf("active = %q, want chained hello", got)
	}
}

func TestHostRebuildDeferredToClose(t *testing.T) {
	app, dir := testApp(t, map[string]string{"hello.lua": helloLua})
	var ctx *api.Context
	rec := fakeRecord("refresher", &api.API{
		Update: func(in api.Input, dt float64) { ctx.RequestMenuRebuild() },
	})
	ctx = injectActive(app, rec)

	writePlugin(t, dir, "clock.lua", clockLua)
	app.registry.Refresh(dir)

	app.stepPlugin(api.Input{}, 0.016)
	if !app.menuStale {
		t.Fatal("menu not marked stale after rebuild request")
	}

	app.stepPlugin(api.Input{Back: true}, 0.016)
	if app.menuStale {
		t.Error("menu still stale after close")
	}
	if app.Menu().Len() != 2 {
		t.Errorf("menu Len = %d, want 2 after rebuild", app.Menu().Len())
	}
}

func TestRescanPicksUpNewPlugin(t *testing.T) {
	app, dir := testApp(t, nil)

	writePlugin(t, dir, "hello.lua", helloLua)
	app.lastScan = time.Time{}

	app.stepMenu(api.Input{}, 0.016)

	if got := app.Registry().Count(); got != 1 {
		t.Fatalf("Count = %d, want 1 after rescan", got)
	}
	if app.Menu().Len() != 1 {
		t.Errorf("menu Len = %d, want 1", app.Menu().Len())
	}
	if n, _, _, ok := app.queue.Active(); !ok || n.Title != "Plugins updated" {
		t.Errorf("notification = %+v ok=%v, want rescan banner", n, ok)
	}
}

func TestRescanHonorsInterval(t *testing.T) {
	app, dir := testApp(t, nil)

	writePlugin(t, dir, "hello.lua", helloLua)
	app.lastScan = time.Now()

	app.stepMenu(api.Input{}, 0.016)

	if got := app.Registry().Count(); got != 0 {
		t.Errorf("Count = %d, want 0 before the interval passes", got)
	}
}

func TestRescanUnchangedDirIsQuiet(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})

	app.lastScan = time.Time{}
	app.stepMenu(api.Input{}, 0.016)

	if n, _, _, ok := app.queue.Active(); ok {
		t.Errorf("notification = %+v, want none for an unchanged directory", n)
	}
}

func TestStepMenuNavigation(t *testing.T) {
	app, _ := testApp(t, map[string]string{
		"hello.lua": helloLua,
		"radio.lua": `
plugin = { name = "radio", category = "tools" }
function update(input, dt) end
function draw() end
`,
	})

	if it, _ := app.Menu().Selected(); it.Name != "hello" {
		t.Fatalf("initial selection = %q, want hello", it.Name)
	}

	app.stepMenu(api.Input{Down: true}, 0.016)
	if it, _ := app.Menu().Selected(); it.Name != "radio" {
		t.Errorf("after Down: selection = %q, want radio", it.Name)
	}

	app.stepMenu(api.Input{Dial: -1}, 0.016)
	if it, _ := app.Menu().Selected(); it.Name != "hello" {
		t.Errorf("after dial back: selection = %q, want hello", it.Name)
	}

	app.stepMenu(api.Input{Select: true}, 0.016)
	if app.state != statePlugin || app.activeName() != "hello" {
		t.Errorf("after Select: state=%v active=%q, want hello running", app.state, app.activeName())
	}
}

func TestReloadConfigTheme(t *testing.T) {
	app, _ := testApp(t, nil)

	body := fmt.Sprintf("[deck]\nplugins_dir = %q\ntheme = \"list\"\n", app.config.Deck.PluginsDir)
	if err := os.WriteFile(app.config.Path(), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	app.reloadConfig()

	if app.ThemeName() != "list" {
		t.Errorf("ThemeName = %q, want list after reload", app.ThemeName())
	}
}

func TestReloadConfigBadFileKeepsRunning(t *testing.T) {
	app, _ := testApp(t, nil)
	before := app.config

	if err := os.WriteFile(app.config.Path(), []byte("[deck\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app.reloadConfig()

	if app.config != before {
		t.Error("broken reload replaced the live config")
	}
	if n, _, _, ok := app.queue.Active(); !ok || n.Title != "Config error" {
		t.Errorf("notification = %+v ok=%v, want config error banner", n, ok)
	}
}

func TestReloadConfigMovesPluginsDir(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})

	newDir := filepath.Join(t.TempDir(), "plugins2")
	if err := os.MkdirAll(newDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePlugin(t, newDir, "clock.lua", clockLua)

	body := fmt.Sprintf("[deck]\nplugins_dir = %q\n", newDir)
	if err := os.WriteFile(app.config.Path(), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	app.reloadConfig()

	if _, ok := app.Registry().Get("hello"); ok {
		t.Error("hello still registered after the directory moved")
	}
	if _, ok := app.Registry().Get("clock"); !ok {
		t.Error("clock not loaded from the new directory")
	}
}

func TestReloadVisibility(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})

	visPath := app.config.VisibilityPath()
	if err := os.WriteFile(visPath, []byte("[plugins.hello]\nhidden = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app.reloadVisibility()

	if app.Menu().Len() != 0 {
		t.Errorf("menu Len = %d, want 0 with hello hidden", app.Menu().Len())
	}
}

func TestDrainEventsQuit(t *testing.T) {
	app, _ := testApp(t, nil)
	events := make(chan display.Event, 1)
	events <- display.Event{Type: display.EventKey, Key: display.KeyCtrlC}

	if err := app.drainEvents(events); !errors.Is(err, ErrQuit) {
		t.Errorf("drainEvents = %v, want ErrQuit", err)
	}
}

func TestDrainEventsThemeAndMetricsKeys(t *testing.T) {
	app, _ := testApp(t, nil)
	before := app.ThemeName()

	events := make(chan display.Event, 2)
	events <- display.Event{Type: display.EventKey, Key: display.KeyF8}
	events <- display.Event{Type: display.EventKey, Key: display.KeyF9}

	if err := app.drainEvents(events); err != nil {
		t.Fatalf("drainEvents: %v", err)
	}
	if app.ThemeName() == before {
		t.Error("F8 did not cycle the theme")
	}
	if !app.showMetrics {
		t.Error("F9 did not enable the metrics overlay")
	}
}

func TestDrainEventsResize(t *testing.T) {
	app, _ := testApp(t, nil)
	events := make(chan display.Event, 1)
	events <- display.Event{Type: display.EventResize, Width: 100, Height: 30}

	if err := app.drainEvents(events); err != nil {
		t.Fatalf("drainEvents: %v", err)
	}
	if w, h := app.frame.Size(); w != 100 || h != 30 {
		t.Errorf("frame size = %dx%d, want 100x30", w, h)
	}
}

func waitRunning(t *testing.T, app *Application) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !app.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("application never started running")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRunQuitsOnCtrlC(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})
	null := app.backend.(*display.Null)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()
	waitRunning(t, app)

	null.PostEvent(display.Event{Type: display.EventKey, Key: display.KeyCtrlC})

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrQuit) {
			t.Errorf("Run = %v, want ErrQuit", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not exit after Ctrl-C")
	}

	if st := LoadUIState(app.config.StatePath()); st.Theme != "carthing" {
		t.Errorf("persisted theme = %q, want carthing", st.Theme)
	}
}

func TestRunStopsOnShutdown(t *testing.T) {
	app, _ := testApp(t, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()
	waitRunning(t, app)

	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run = %v, want nil after Shutdown", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not exit after Shutdown")
	}
}

func TestQuitClosesActivePlugin(t *testing.T) {
	app, _ := testApp(t, map[string]string{"hello.lua": helloLua})
	rec, _ := app.Registry().Get("hello")
	closed := false
	rec.API.Shutdown = func() { closed = true }

	app.launch("hello")

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()
	waitRunning(t, app)

	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	<-errCh

	if !closed {
		t.Error("active plugin's Shutdown hook was not called at quit")
	}
	if rec.State != plugin.StateLoaded {
		t.Errorf("record state = %v, want loaded after quit", rec.State)
	}
	if st := LoadUIState(app.config.StatePath()); st.Selected != "hello" {
		t.Errorf("persisted selection = %q, want the closed plugin", st.Selected)
	}
}

func TestRunTwice(t *testing.T) {
	app, _ := testApp(t, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()
	waitRunning(t, app)

	if err := app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrAlreadyRunning", err)
	}

	app.Shutdown()
	<-errCh
}
