package image

import "errors"

var (
	// ErrMissingSource is returned when a serialized image has no src.
	ErrMissingSource = errors.New("image: missing src")
	// ErrInvalidWidth is returned for negative widths.
	ErrInvalidWidth = errors.New("image: invalid width")
)
