package lua

import (
	"errors"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s, err := NewState()
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDoString(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`x = 1 + 2`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := s.GetGlobal("x"); got != lua.LNumber(3) {
		t.Errorf("x = %v, want 3", got)
	}
}

func TestDoStringSyntaxError(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`this is not lua`); err == nil {
		t.Fatal("DoString accepted invalid source")
	}
}

func TestCall(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	results, err := s.Call("add", lua.LNumber(2), lua.LNumber(3))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(results) != 1 || results[0] != lua.LNumber(5) {
		t.Errorf("add(2, 3) = %v, want [5]", results)
	}
}

func TestCallNoResults(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function noop() end`); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	results, err := s.Call("noop")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if results == nil {
		t.Error("Call returned nil results, want empty slice")
	}
	if len(results) != 0 {
		t.Errorf("noop() returned %d values, want 0", len(results))
	}
}

func TestCallMissingFunction(t *testing.T) {
	s := newTestState(t)

	if _, err := s.Call("nothere"); err == nil {
		t.Error("Call of missing function did not fail")
	}
}

func TestCallNotAFunction(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`value = 42`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if _, err := s.Call("value"); err == nil {
		t.Error("Call of a number did not fail")
	}
}

func TestCallRuntimeError(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function boom() error("kaput") end`); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	_, err := s.Call("boom")
	if err == nil {
		t.Fatal("Call of failing function did not fail")
	}
	if !strings.Contains(err.Error(), "kaput") {
		t.Errorf("error %q does not mention the script message", err)
	}
}

func TestCallOptional(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function present() return "yes" end`); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	results, called, err := s.CallOptional("present")
	if err != nil {
		t.Fatalf("CallOptional: %v", err)
	}
	if !called {
		t.Error("called = false for a defined function")
	}
	if len(results) != 1 || results[0] != lua.LString("yes") {
		t.Errorf("present() = %v, want [yes]", results)
	}

	_, called, err = s.CallOptional("absent")
	if err != nil {
		t.Fatalf("CallOptional absent: %v", err)
	}
	if called {
		t.Error("called = true for a missing function")
	}
}

func TestFn(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`function f() end; v = 1`); err != nil {
		t.Fatalf("DoString: %v", err)
	}

	if _, ok := s.Fn("f"); !ok {
		t.Error("Fn(f) = false, want true")
	}
	if _, ok := s.Fn("v"); ok {
		t.Error("Fn(v) = true for a number")
	}
	if _, ok := s.Fn("missing"); ok {
		t.Error("Fn(missing) = true")
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	s := newTestState(t)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		if got := s.GetGlobal(name); got != lua.LNil {
			t.Errorf("global %s = %v, want nil", name, got)
		}
	}
}

func TestSandboxBlocksUnsafeLibraries(t *testing.T) {
	s := newTestState(t)

	for _, name := range []string{"io", "os", "debug"} {
		if got := s.GetGlobal(name); got != lua.LNil {
			t.Errorf("global %s = %v, want nil", name, got)
		}
	}
}

func TestSandboxRequire(t *testing.T) {
	s := newTestState(t)
	installDeck(s, &env{name: "t", log: testLogger()})

	if err := s.DoString(`m = require("string")`); err != nil {
		t.Fatalf("require string: %v", err)
	}
	if s.GetGlobal("m") == lua.LNil {
		t.Error("require(string) returned nil")
	}

	if err := s.DoString(`d = require("deck")`); err != nil {
		t.Fatalf("require deck: %v", err)
	}
	if s.GetGlobal("d").Type() != lua.LTTable {
		t.Errorf("require(deck) = %s, want table", s.GetGlobal("d").Type())
	}

	if err := s.DoString(`require("io")`); err == nil {
		t.Error("require(io) did not fail")
	}
}

func TestSafeLibrariesWork(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString(`r = string.upper("a") .. tostring(math.floor(2.7)) .. table.concat({"x"})`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := s.GetGlobal("r"); got != lua.LString("A2x") {
		t.Errorf("r = %v, want A2x", got)
	}
}

func TestRegisterModule(t *testing.T) {
	s := newTestState(t)

	s.RegisterModule("probe", map[string]lua.LGFunction{
		"answer": func(L *lua.LState) int {
			L.Push(lua.LNumber(42))
			return 1
		},
	})

	if err := s.DoString(`a = probe.answer()`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := s.GetGlobal("a"); got != lua.LNumber(42) {
		t.Errorf("a = %v, want 42", got)
	}
}

func TestClose(t *testing.T) {
	s, err := NewState()
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.IsClosed() {
		t.Error("IsClosed = false after Close")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if err := s.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString after Close = %v, want ErrStateClosed", err)
	}
	if _, err := s.Call("f"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call after Close = %v, want ErrStateClosed", err)
	}
	if got := s.GetGlobal("x"); got != lua.LNil {
		t.Errorf("GetGlobal after Close = %v, want nil", got)
	}
}
