package app

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for application lifecycle control flow.
var (
	// ErrQuit is returned by Run when the user asked the shell to exit.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning is returned by Run when the loop is active.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning is returned by Shutdown before Run has started.
	ErrNotRunning = errors.New("application not running")

	// ErrShutdownTimeout is reported when teardown exceeds its deadline.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// ComponentError wraps a failure from one shell component, recording
// which component and which action failed.
type ComponentError struct {
	Component string
	Action    string
	Err       error
}

// NewComponentError creates a ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{Component: component, Action: action, Err: err}
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Component, e.Action, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// Is matches other ComponentErrors by component and action, letting
// callers test for a failure class without comparing wrapped errors.
func (e *ComponentError) Is(target error) bool {
	var ce *ComponentError
	if !errors.As(target, &ce) {
		return false
	}
	return e.Component == ce.Component && (ce.Action == "" || e.Action == ce.Action)
}

// RecoveredPanicError wraps a panic caught at a plugin call boundary.
type RecoveredPanicError struct {
	Value any
	Stack string
}

// NewRecoveredPanicError creates a RecoveredPanicError from a recover
// value and a captured stack trace.
func NewRecoveredPanicError(value any, stack string) *RecoveredPanicError {
	return &RecoveredPanicError{Value: value, Stack: stack}
}

func (e *RecoveredPanicError) Error() string {
	return fmt.Sprintf("recovered panic: %v", e.Value)
}

// ErrorList accumulates errors from multi-step teardown.
type ErrorList struct {
	errs []error
}

// Add appends a non-nil error.
func (l *ErrorList) Add(err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

// Err returns the accumulated errors as one error, nil when empty.
func (l *ErrorList) Err() error {
	switch len(l.errs) {
	case 0:
		return nil
	case 1:
		return l.errs[0]
	}
	parts := make([]string, len(l.errs))
	for i, err := range l.errs {
		parts[i] = err.Error()
	}
	return fmt.Errorf("%d errors: %s", len(l.errs), strings.Join(parts, "; "))
}

// Len returns the number of accumulated errors.
func (l *ErrorList) Len() int {
	return len(l.errs)
}
