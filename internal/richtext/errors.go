package richtext

import "errors"

// ErrInvalidHeading is returned when a serialized heading has an unknown tag.
var ErrInvalidHeading = errors.New("richtext: invalid heading tag")
