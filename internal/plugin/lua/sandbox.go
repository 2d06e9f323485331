package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts a plugin interpreter to safe operations. Deck
// plugins draw through the host and have no business loading code or
// touching the machine, so there are no capability grants: the
// restrictions are the same for every plugin.
type Sandbox struct {
	L *lua.LState
}

// NewSandbox creates a sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{L: L}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	// Remove globals that load code and could bypass the sandbox.
	dangerousFuncs := []string{
		"dofile",     // Load and execute file
		"loadfile",   // Load file as function
		"load",       // Load string as function
		"loadstring", // Load string as function (deprecated but may exist)
	}
	for _, name := range dangerousFuncs {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installRequire()
}

// requirable names the modules require may resolve. All of them are
// already installed as globals; require just hands the global back so
// scripts written in module style keep working.
var requirable = map[string]bool{
	"deck":   true,
	"string": true,
	"table":  true,
	"math":   true,
}

// installRequire provides a require that only resolves the deck module
// and the safe built-ins. The package library is never opened, so this
// is the only require there is; everything else raises an error.
func (s *Sandbox) installRequire() {
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !requirable[name] {
			L.RaiseError("module %q is not available", name)
			return 0 // unreachable, RaiseError does not return
		}
		L.Push(L.GetGlobal(name))
		return 1
	}))
}
