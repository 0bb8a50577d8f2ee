package doc

import (
	"errors"
	"fmt"
)

// Errors returned by document operations.
var (
	// ErrUpdateAborted indicates an update was abandoned because an invariant failed.
	ErrUpdateAborted = errors.New("doc: update aborted")

	// ErrDuplicateType indicates a class with the same type is already registered.
	ErrDuplicateType = errors.New("doc: duplicate node type")

	// ErrUnknownType indicates a node type has no registered class.
	ErrUnknownType = errors.New("doc: unknown node type")

	// ErrInvalidJSON indicates serialized document data could not be parsed.
	ErrInvalidJSON = errors.New("doc: invalid json")

	// ErrReadOnlyTxn indicates a mutation was attempted inside Read.
	ErrReadOnlyTxn = errors.New("doc: mutation in read-only transaction")
)

// InvariantError reports a structural invariant violation.
// It is raised with panic by Assert and recovered by Document.Update.
type InvariantError struct {
	Message string
}

// Error implements error.
func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Message
}

// Invariant raises an InvariantError unconditionally.
func Invariant(format string, args ...any) {
	panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
}

// Assert raises an InvariantError when cond is false.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		Invariant(format, args...)
	}
}

// JSONError reports a failure while importing serialized nodes.
type JSONError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *JSONError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *JSONError) Unwrap() error {
	return e.Err
}
