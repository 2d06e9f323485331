package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// State wraps one plugin's gopher-lua interpreter.
//
// LStates are not goroutine-safe and llzdeck never shares one: every
// State belongs to the frame loop and all calls happen from that
// goroutine, so there is deliberately no lock here.
type State struct {
	L *lua.LState

	sandbox *Sandbox
	closed  bool
}

// NewState creates a sandboxed interpreter with only the safe standard
// libraries open.
func NewState() (*State, error) {
	s := &State{}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // opened selectively below
	})
	s.L = L

	openSafeLibraries(L)

	s.sandbox = NewSandbox(L)
	s.sandbox.Install()

	return s, nil
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// Base library (print, type, pairs, ipairs, etc.)
	lua.OpenBase(L)

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Intentionally NOT opened:
	// - io (filesystem access)
	// - os (system calls, execute)
	// - debug (can bypass the sandbox)
	// - package (can load arbitrary modules; the sandbox installs its
	//   own require instead)
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes Lua source from a string.
func (s *State) DoString(code string) error {
	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Call calls a global Lua function with the given arguments.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q is not a function (got %s)", fn, fnVal.Type())
	}

	return s.call(fnVal, args...)
}

// CallOptional calls a global function if the script defines one.
// A missing or non-function global is not an error; called reports
// whether a call actually happened.
func (s *State) CallOptional(fn string, args ...lua.LValue) (results []lua.LValue, called bool, err error) {
	if s.closed {
		return nil, false, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, false, nil
	}

	results, err = s.call(fnVal, args...)
	return results, true, err
}

// call pushes and protected-calls a function value, collecting only
// the values the call added to the stack.
func (s *State) call(fnVal lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	stackTop := s.L.GetTop()

	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("lua panic: %v", r)
			}
		}()
		callErr = s.L.PCall(len(args), lua.MultRet, nil)
	}()

	if callErr != nil {
		// A failed call may leave values behind; restore the stack.
		s.L.SetTop(stackTop)
		return nil, callErr
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// Fn returns the global function with the given name, if the script
// defines one.
func (s *State) Fn(name string) (*lua.LFunction, bool) {
	if s.closed {
		return nil, false
	}
	f, ok := s.L.GetGlobal(name).(*lua.LFunction)
	return f, ok
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// RegisterModule sets a global table with the given functions.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	if s.closed {
		return
	}
	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}

// Close releases the interpreter. After Close, all other methods
// return ErrStateClosed or zero values. Close is idempotent.
func (s *State) Close() error {
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
