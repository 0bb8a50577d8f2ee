package lua

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua: state is closed")

	// ErrBudgetExceeded is returned when a script runs past its time budget.
	ErrBudgetExceeded = errors.New("lua: execution budget exceeded")

	// ErrUnknownCommand is returned when dispatching a command no script
	// registered.
	ErrUnknownCommand = errors.New("lua: unknown command")
)

// ScriptError reports a failure while loading or running a script.
type ScriptError struct {
	Script string
	Err    error
}

func (e *ScriptError) Error() string {
	return "lua: " + e.Script + ": " + e.Err.Error()
}

func (e *ScriptError) Unwrap() error { return e.Err }
