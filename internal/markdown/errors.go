package markdown

import "errors"

var (
	// ErrNotElement is returned when a parser for an *_open token builds a
	// node that cannot hold children.
	ErrNotElement = errors.New("markdown: open token parser must return an element")
)
