package lua

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/display"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func writeLua(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// loadLua runs a script through the driver as a single-file plugin.
func loadLua(t *testing.T, name, src string) *api.API {
	t.Helper()
	path := writeLua(t, t.TempDir(), name, src)

	a, handle, err := NewDriver().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { handle.Close() })
	return a
}

type testHost struct {
	requested string
	rebuilds  int
	notes     []api.Notification
	logs      []string
}

func (h *testHost) RequestPlugin(name string) { h.requested = name }
func (h *testHost) RequestMenuRebuild()       { h.rebuilds++ }
func (h *testHost) Notify(n api.Notification) { h.notes = append(h.notes, n) }
func (h *testHost) Logf(format string, args ...any) {
	h.logs = append(h.logs, fmt.Sprintf(format, args...))
}

func TestDriverKind(t *testing.T) {
	if got := NewDriver().Kind(); got != "lua" {
		t.Errorf("Kind = %q, want %q", got, "lua")
	}
}

func TestDriverCanLoad(t *testing.T) {
	d := NewDriver()

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"hello.lua", false, true},
		{"HELLO.LUA", false, true},
		{"clock.so", false, false},
		{"notes.txt", false, false},
		{"sysmon", true, true},
	}
	for _, tt := range tests {
		if got := d.CanLoad(tt.path, tt.isDir); got != tt.want {
			t.Errorf("CanLoad(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestLoadFileMetadata(t *testing.T) {
	a := loadLua(t, "hello.lua", `
plugin = {
    name = "hello",
    description = "greets the deck",
    category = "tools",
    handles_back = true,
}
function update(input, dt) end
function draw() end
`)

	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if a.Name != "hello" {
		t.Errorf("Name = %q, want %q", a.Name, "hello")
	}
	if a.Description != "greets the deck" {
		t.Errorf("Description = %q", a.Description)
	}
	if a.Category != api.CategoryTools {
		t.Errorf("Category = %q, want %q", a.Category, api.CategoryTools)
	}
	if !a.HandlesBack {
		t.Error("HandlesBack = false, want true")
	}
}

func TestLoadFallbackName(t *testing.T) {
	a := loadLua(t, "plainhello.lua", `
function update(input, dt) end
function draw() end
`)

	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if a.Name != "plainhello" {
		t.Errorf("Name = %q, want %q", a.Name, "plainhello")
	}
	if a.Category != api.CategoryOther {
		t.Errorf("Category = %q, want %q", a.Category, api.CategoryOther)
	}
}

func TestLoadMissingDrawFailsValidation(t *testing.T) {
	a := loadLua(t, "nodraw.lua", `
function update(input, dt) end
`)

	if err := a.Validate(); !errors.Is(err, api.ErrNoDraw) {
		t.Errorf("Validate = %v, want ErrNoDraw", err)
	}
}

func TestLoadBrokenScript(t *testing.T) {
	d := NewDriver()

	path := writeLua(t, t.TempDir(), "bad.lua", `this is not lua`)
	if _, _, err := d.Load(path); err == nil {
		t.Error("Load accepted a script with a syntax error")
	}

	path = writeLua(t, t.TempDir(), "angry.lua", `error("refuses to load")`)
	_, _, err := d.Load(path)
	if err == nil {
		t.Fatal("Load accepted a script that errors at load time")
	}
	if !strings.Contains(err.Error(), "refuses to load") {
		t.Errorf("error %q does not carry the script message", err)
	}
}

func TestLoadDirectoryPlugin(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "sysmon")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `name: sysmon
description: CPU and memory gauges
category: system
main: gauges.lua
options:
  interval: 2
`
	if err := os.WriteFile(filepath.Join(root, ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	writeLua(t, root, "gauges.lua", `
plugin = { name = "scriptname" }
local interval = -1
function init(ctx, options)
    interval = options.interval or -1
end
function update(input, dt) end
function draw()
    deck.text(0, 0, "interval=" .. tostring(interval))
end
`)

	a, handle, err := NewDriver().Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer handle.Close()

	// Manifest metadata wins over the script's plugin table.
	if a.Name != "sysmon" {
		t.Errorf("Name = %q, want %q", a.Name, "sysmon")
	}
	if a.Category != api.CategorySystem {
		t.Errorf("Category = %q, want %q", a.Category, api.CategorySystem)
	}

	a.Init(api.NewContext(20, 4, nil))
	f := display.NewFrame(20, 4)
	a.Draw(f)
	if got := f.Row(0); got != "interval=2" {
		t.Errorf("row 0 = %q, want %q", got, "interval=2")
	}
}

func TestLoadDirectoryMissingMain(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nothing")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, _, err := NewDriver().Load(dir); !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("Load = %v, want ErrNoEntryPoint", err)
	}
}

func TestLoadManifestMainEscape(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "evil")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte("main: ../outside.lua\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := NewDriver().Load(dir); !errors.Is(err, ErrMainOutsideDir) {
		t.Errorf("Load = %v, want ErrMainOutsideDir", err)
	}
}

func TestInitContextDimensions(t *testing.T) {
	a := loadLua(t, "dims.lua", `
local w, h = 0, 0
function init(ctx, options)
    w, h = ctx.width, ctx.height
end
function update(input, dt) end
function draw()
    deck.text(0, 0, string.format("%dx%d", w, h))
end
`)

	a.Init(api.NewContext(40, 12, nil))
	f := display.NewFrame(40, 12)
	a.Draw(f)
	if got := f.Row(0); got != "40x12" {
		t.Errorf("row 0 = %q, want %q", got, "40x12")
	}
}

func TestDrawThroughDeck(t *testing.T) {
	a := loadLua(t, "painter.lua", `
plugin = { name = "painter" }
function update(input, dt) end
function draw()
    deck.clear()
    deck.rect(0, 0, 7, 3)
    deck.text(2, 1, "hi!", { bold = true })
end
`)

	a.Init(api.NewContext(8, 4, nil))
	f := display.NewFrame(8, 4)
	a.Draw(f)

	want := []string{
		"┌─────┐",
		"│ hi! │",
		"└─────┘",
	}
	for y, row := range want {
		if got := f.Row(y); got != row {
			t.Errorf("row %d = %q, want %q", y, got, row)
		}
	}

	if _, st := f.CellAt(2, 1); !st.Attributes.Has(api.AttrBold) {
		t.Error("text cell is not bold")
	}
}

func TestUpdateSeesInput(t *testing.T) {
	a := loadLua(t, "echoinput.lua", `
local last = "none"
function update(input, dt)
    if input.select then last = "select" end
    if input.dial > 0 then last = "dial" end
end
function draw()
    deck.text(0, 0, last)
end
`)

	a.Init(api.NewContext(10, 2, nil))
	f := display.NewFrame(10, 2)

	a.Update(api.Input{Select: true}, 0.016)
	a.Draw(f)
	if got := f.Row(0); got != "select" {
		t.Errorf("after select, row 0 = %q, want %q", got, "select")
	}

	a.Update(api.Input{Dial: 2}, 0.016)
	a.Draw(f)
	if got := f.Row(0); got != "dial" {
		t.Errorf("after dial, row 0 = %q, want %q", got, "dial")
	}
}

func TestUpdateErrorPanics(t *testing.T) {
	a := loadLua(t, "blowup.lua", `
function update(input, dt)
    error("boom")
end
function draw() end
`)
	a.Init(api.NewContext(10, 2, nil))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("update error did not panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value = %T, want error", r)
		}
		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("panic error %q does not mention the script error", err)
		}
	}()
	a.Update(api.Input{}, 0.016)
}

func TestDeckClose(t *testing.T) {
	a := loadLua(t, "closer.lua", `
function update(input, dt)
    if input.back then deck.close() end
end
function draw() end
`)
	a.Init(api.NewContext(10, 2, nil))

	a.Update(api.Input{}, 0.016)
	if a.WantsClose() {
		t.Error("WantsClose = true before back press")
	}

	a.Update(api.Input{Back: true}, 0.016)
	if !a.WantsClose() {
		t.Error("WantsClose = false after deck.close")
	}
	if a.WantsClose() {
		t.Error("WantsClose = true twice; the request should be consumed")
	}
}

func TestWantsCloseHook(t *testing.T) {
	a := loadLua(t, "timed.lua", `
local ticks = 0
function update(input, dt)
    ticks = ticks + 1
end
function draw() end
function wants_close()
    return ticks >= 3
end
`)
	a.Init(api.NewContext(10, 2, nil))

	for i := 0; i < 2; i++ {
		a.Update(api.Input{}, 0.016)
	}
	if a.WantsClose() {
		t.Error("WantsClose = true after 2 updates")
	}

	a.Update(api.Input{}, 0.016)
	if !a.WantsClose() {
		t.Error("WantsClose = false after 3 updates")
	}
}

func TestHostCalls(t *testing.T) {
	a := loadLua(t, "hostcalls.lua", `
function init(ctx, options)
    deck.log("ready")
end
function update(input, dt)
    if input.select then
        deck.notify("saved", { body = "state written", level = "success", seconds = 2 })
        deck.launch("clock")
        deck.rebuild_menu()
    end
end
function draw() end
`)

	host := &testHost{}
	a.Init(api.NewContext(20, 5, host))
	a.Update(api.Input{Select: true}, 0.016)

	if len(host.logs) != 1 || host.logs[0] != "ready" {
		t.Errorf("logs = %v, want [ready]", host.logs)
	}
	if host.requested != "clock" {
		t.Errorf("requested = %q, want %q", host.requested, "clock")
	}
	if host.rebuilds != 1 {
		t.Errorf("rebuilds = %d, want 1", host.rebuilds)
	}
	if len(host.notes) != 1 {
		t.Fatalf("notes = %v, want one", host.notes)
	}
	n := host.notes[0]
	if n.Title != "saved" || n.Body != "state written" {
		t.Errorf("notification = %+v", n)
	}
	if n.Level != api.LevelSuccess {
		t.Errorf("Level = %v, want LevelSuccess", n.Level)
	}
	if n.Duration.Seconds() != 2 {
		t.Errorf("Duration = %v, want 2s", n.Duration)
	}
}

func TestShutdownErrorSwallowed(t *testing.T) {
	a := loadLua(t, "grumpy.lua", `
function update(input, dt) end
function draw() end
function shutdown()
    error("refusing to go")
end
`)
	a.Init(api.NewContext(10, 2, nil))

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Shutdown panicked: %v", r)
		}
	}()
	a.Shutdown()
}

func TestInitErrorPanics(t *testing.T) {
	a := loadLua(t, "badinit.lua", `
function init(ctx, options)
    error("init failed")
end
function update(input, dt) end
function draw() end
`)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("init error did not panic")
		}
	}()
	a.Init(api.NewContext(10, 2, nil))
}

func TestHandleCloseIdempotent(t *testing.T) {
	path := writeLua(t, t.TempDir(), "short.lua", `
function update(input, dt) end
function draw() end
`)
	_, handle, err := NewDriver().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := handle.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := handle.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestSandboxAppliesToPlugins(t *testing.T) {
	d := NewDriver()

	path := writeLua(t, t.TempDir(), "sneaky.lua", `
local f = io.open("/etc/passwd")
function update(input, dt) end
function draw() end
`)
	if _, _, err := d.Load(path); err == nil {
		t.Error("Load accepted a script reaching for io")
	}
}
