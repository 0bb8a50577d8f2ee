package list

import "errors"

// ErrInvalidListType is returned when serialized data names an unknown list
// type.
var ErrInvalidListType = errors.New("list: invalid list type")
