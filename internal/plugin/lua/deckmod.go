package lua

import (
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/llzware/llzdeck/api"
	"github.com/llzware/llzdeck/internal/display"
)

// env carries one plugin's host bindings into its deck module. The
// driver sets ctx at Init, surface around each Draw, and input around
// each Update; outside those windows the corresponding deck calls
// degrade to no-ops so a stray call at script load time cannot crash.
type env struct {
	name string
	log  *zap.SugaredLogger

	ctx     *api.Context
	surface api.Surface
	input   api.Input

	wantsClose bool
}

// takeClose consumes a pending deck.close request.
func (e *env) takeClose() bool {
	c := e.wantsClose
	e.wantsClose = false
	return c
}

// installDeck registers the global deck table on the plugin's state.
func installDeck(s *State, e *env) {
	s.RegisterModule("deck", map[string]lua.LGFunction{
		"size":         e.luaSize,
		"clear":        e.luaClear,
		"text":         e.luaText,
		"fill":         e.luaFill,
		"rect":         e.luaRect,
		"input":        e.luaInput,
		"now":          luaNow,
		"notify":       e.luaNotify,
		"launch":       e.luaLaunch,
		"rebuild_menu": e.luaRebuildMenu,
		"log":          e.luaLog,
		"close":        e.luaClose,
	})
}

// deck.size() -> width, height
func (e *env) luaSize(L *lua.LState) int {
	w, h := 0, 0
	switch {
	case e.surface != nil:
		w, h = e.surface.Size()
	case e.ctx != nil:
		w, h = e.ctx.Width, e.ctx.Height
	}
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(h))
	return 2
}

// deck.clear(opts?)
func (e *env) luaClear(L *lua.LState) int {
	if e.surface == nil {
		return 0
	}
	e.surface.Clear(styleFromOpts(L.OptTable(1, nil)))
	return 0
}

// deck.text(x, y, s, opts?) -> columns advanced
func (e *env) luaText(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	str := L.CheckString(3)
	st := styleFromOpts(L.OptTable(4, nil))

	if e.surface == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(e.surface.Text(x, y, str, st)))
	return 1
}

// deck.fill(x, y, w, h, ch?, opts?)
func (e *env) luaFill(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	w := L.CheckInt(3)
	h := L.CheckInt(4)
	ch := L.OptString(5, " ")
	st := styleFromOpts(L.OptTable(6, nil))

	if e.surface == nil {
		return 0
	}
	r := ' '
	if ch != "" {
		r = []rune(ch)[0]
	}
	e.surface.Fill(x, y, w, h, r, st)
	return 0
}

// deck.rect(x, y, w, h, opts?) draws a single-line border.
func (e *env) luaRect(L *lua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	w := L.CheckInt(3)
	h := L.CheckInt(4)
	st := styleFromOpts(L.OptTable(5, nil))

	if e.surface == nil {
		return 0
	}
	display.Box(e.surface, x, y, w, h, st)
	return 0
}

// deck.input() -> table with the current frame's controls
func (e *env) luaInput(L *lua.LState) int {
	L.Push(inputTable(L, e.input))
	return 1
}

// inputTable converts an input snapshot to the table handed to update.
func inputTable(L *lua.LState, in api.Input) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "up", lua.LBool(in.Up))
	L.SetField(t, "down", lua.LBool(in.Down))
	L.SetField(t, "left", lua.LBool(in.Left))
	L.SetField(t, "right", lua.LBool(in.Right))
	L.SetField(t, "select", lua.LBool(in.Select))
	L.SetField(t, "back", lua.LBool(in.Back))
	L.SetField(t, "dial", lua.LNumber(in.Dial))
	L.SetField(t, "next", lua.LBool(in.Next()))
	L.SetField(t, "prev", lua.LBool(in.Prev()))
	L.SetField(t, "any", lua.LBool(in.Any()))
	if in.Rune != 0 {
		L.SetField(t, "rune", lua.LString(string(in.Rune)))
	}
	return t
}

// deck.now() -> wall-clock seconds with sub-second precision
func luaNow(L *lua.LState) int {
	L.Push(lua.LNumber(float64(time.Now().UnixNano()) / 1e9))
	return 1
}

// deck.notify(title, opts?) with opts keys body, level, seconds
func (e *env) luaNotify(L *lua.LState) int {
	n := api.Notification{Title: L.CheckString(1)}
	if opts := L.OptTable(2, nil); opts != nil {
		if body, ok := TableString(opts, "body"); ok {
			n.Body = body
		}
		if level, ok := TableString(opts, "level"); ok {
			n.Level = api.ParseLevel(level)
		}
		if secs, ok := TableNumber(opts, "seconds"); ok && secs > 0 {
			n.Duration = time.Duration(secs * float64(time.Second))
		}
	}
	e.ctx.Notify(n)
	return 0
}

// deck.launch(name)
func (e *env) luaLaunch(L *lua.LState) int {
	e.ctx.RequestPlugin(L.CheckString(1))
	return 0
}

// deck.rebuild_menu()
func (e *env) luaRebuildMenu(L *lua.LState) int {
	e.ctx.RequestMenuRebuild()
	return 0
}

// deck.log(...) joins its arguments like print and writes to the shell
// log. Before init the host context is not bound yet, so load-time
// calls go to the driver's own logger.
func (e *env) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.Get(i).String())
	}
	msg := strings.Join(parts, " ")

	if e.ctx != nil {
		e.ctx.Logf("%s", msg)
		return 0
	}
	e.log.Infow(msg, "plugin", e.name)
	return 0
}

// deck.close() asks the shell to return to the menu.
func (e *env) luaClose(L *lua.LState) int {
	e.wantsClose = true
	return 0
}

// styleFromOpts builds a style from an options table with fg and bg hex
// colors plus bold, dim, italic, underline, and reverse flags. Invalid
// colors are ignored rather than raised so a typo cannot kill a draw.
func styleFromOpts(t *lua.LTable) api.Style {
	st := api.DefaultStyle()
	if t == nil {
		return st
	}

	if hex, ok := TableString(t, "fg"); ok {
		if c, err := api.Hex(hex); err == nil {
			st = st.WithForeground(c)
		}
	}
	if hex, ok := TableString(t, "bg"); ok {
		if c, err := api.Hex(hex); err == nil {
			st = st.WithBackground(c)
		}
	}

	if b, ok := TableBool(t, "bold"); ok && b {
		st = st.Bold()
	}
	if b, ok := TableBool(t, "dim"); ok && b {
		st = st.Dim()
	}
	if b, ok := TableBool(t, "italic"); ok && b {
		st = st.Italic()
	}
	if b, ok := TableBool(t, "underline"); ok && b {
		st = st.Underline()
	}
	if b, ok := TableBool(t, "reverse"); ok && b {
		st = st.Reverse()
	}
	return st
}
