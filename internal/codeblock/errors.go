package codeblock

import "errors"

// ErrNotCodeBlock is returned when a command targets a node that is not a
// code block.
var ErrNotCodeBlock = errors.New("codeblock: not a code block")
