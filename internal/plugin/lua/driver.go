package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/plugin"
)

// Driver loads Lua plugins: single .lua files and directories with an
// entry script. Each loaded plugin runs in its own sandboxed
// interpreter that lives as long as the plugin stays loaded, so script
// state survives between activations.
type Driver struct {
	log *zap.SugaredLogger
}

var _ plugin.Driver = (*Driver)(nil)

// Option configures the driver.
type Option func(*Driver)

// WithLogger sets the logger for load and shutdown diagnostics.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(d *Driver) { d.log = log }
}

// NewDriver creates a Lua plugin driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Kind implements plugin.Driver.
func (d *Driver) Kind() plugin.Kind { return plugin.KindLua }

// CanLoad claims .lua files and every directory. A directory without
// an entry script fails in Load with ErrNoEntryPoint.
func (d *Driver) CanLoad(path string, isDir bool) bool {
	if isDir {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), ".lua")
}

// Load runs the plugin's entry script in a fresh interpreter and
// assembles a vtable around the hooks the script defined.
func (d *Driver) Load(path string) (*api.API, plugin.Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var (
		manifest *Manifest
		main     string
		fallback string
	)
	if info.IsDir() {
		manifest, err = LoadManifest(filepath.Join(path, ManifestFile))
		if err != nil {
			return nil, nil, err
		}
		main, err = manifest.MainPath(path)
		if err != nil {
			return nil, nil, err
		}
		if _, err := os.Stat(main); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", main, ErrNoEntryPoint)
		}
		fallback = filepath.Base(path)
	} else {
		manifest = &Manifest{}
		main = path
		fallback = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	state, err := NewState()
	if err != nil {
		return nil, nil, err
	}

	e := &env{name: fallback, log: d.log}
	installDeck(state, e)

	if err := state.DoFile(main); err != nil {
		state.Close()
		return nil, nil, fmt.Errorf("run %s: %w", main, err)
	}

	a := d.buildAPI(state, e, manifest, fallback)
	e.name = a.Name

	return a, plugin.HandleFunc(state.Close), nil
}

// buildAPI maps the script's globals onto a vtable. Metadata
// precedence is manifest over the script's plugin table over the file
// name. Update and Draw are wired only when the script defines them,
// which lets registry validation reject an incomplete script.
func (d *Driver) buildAPI(state *State, e *env, m *Manifest, fallback string) *api.API {
	a := &api.API{Name: fallback}

	if t, ok := state.GetGlobal("plugin").(*lua.LTable); ok {
		if v, ok := TableString(t, "name"); ok && v != "" {
			a.Name = v
		}
		if v, ok := TableString(t, "description"); ok {
			a.Description = v
		}
		if v, ok := TableString(t, "category"); ok {
			a.Category = api.ParseCategory(v)
		}
		if v, ok := TableBool(t, "handles_back"); ok {
			a.HandlesBack = v
		}
	}

	if m.Name != "" {
		a.Name = m.Name
	}
	if m.Description != "" {
		a.Description = m.Description
	}
	if m.Category != "" {
		a.Category = api.ParseCategory(m.Category)
	}
	if m.HandlesBack {
		a.HandlesBack = true
	}
	if a.Category == "" {
		a.Category = api.CategoryOther
	}

	// Init always runs so the host context is bound even when the
	// script has no init of its own.
	a.Init = func(ctx *api.Context) {
		e.ctx = ctx
		e.wantsClose = false

		w, h := 0, 0
		if ctx != nil {
			w, h = ctx.Width, ctx.Height
		}
		ctxT := state.L.NewTable()
		state.L.SetField(ctxT, "width", lua.LNumber(w))
		state.L.SetField(ctxT, "height", lua.LNumber(h))

		if _, _, err := state.CallOptional("init", ctxT, optionsTable(state.L, m.Options)); err != nil {
			panic(fmt.Errorf("plugin %s: init: %w", a.Name, err))
		}
	}

	if _, ok := state.Fn("update"); ok {
		a.Update = func(in api.Input, dt float64) {
			e.input = in
			defer func() { e.input = api.Input{} }()
			if _, err := state.Call("update", inputTable(state.L, in), lua.LNumber(dt)); err != nil {
				panic(fmt.Errorf("plugin %s: update: %w", a.Name, err))
			}
		}
	}

	if _, ok := state.Fn("draw"); ok {
		a.Draw = func(s api.Surface) {
			e.surface = s
			defer func() { e.surface = nil }()
			if _, err := state.Call("draw"); err != nil {
				panic(fmt.Errorf("plugin %s: draw: %w", a.Name, err))
			}
		}
	}

	a.Shutdown = func() {
		if _, _, err := state.CallOptional("shutdown"); err != nil {
			d.log.Warnw("plugin shutdown failed", "plugin", a.Name, "error", err)
		}
		e.ctx = nil
	}

	a.WantsClose = func() bool {
		if e.takeClose() {
			return true
		}
		// Polled every frame; a broken wants_close is swallowed
		// rather than spamming the log.
		results, called, err := state.CallOptional("wants_close")
		if err != nil || !called || len(results) == 0 {
			return false
		}
		return lua.LVAsBool(results[0])
	}

	return a
}

// optionsTable converts manifest options for init. Nil options become
// an empty table so scripts can index without guarding.
func optionsTable(L *lua.LState, opts map[string]any) *lua.LTable {
	if len(opts) == 0 {
		return L.NewTable()
	}
	t, _ := ToLua(L, opts).(*lua.LTable)
	if t == nil {
		t = L.NewTable()
	}
	return t
}
