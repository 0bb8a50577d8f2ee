package table

import "errors"

// ErrInvalidSpan is returned when serialized data gives a cell a span below
// one.
var ErrInvalidSpan = errors.New("table: invalid span")
