package editor

import "errors"

var (
	// ErrDuplicatePlugin is returned when two plugins share a name.
	ErrDuplicatePlugin = errors.New("editor: duplicate plugin")

	// ErrReadOnly is returned when dispatching commands to a read-only editor.
	ErrReadOnly = errors.New("editor: read-only")

	// ErrClosed is returned when using a closed editor.
	ErrClosed = errors.New("editor: closed")
)
