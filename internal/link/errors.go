package link

import "errors"

// ErrMissingURL is returned when a serialized link has no url.
var ErrMissingURL = errors.New("link: missing url")
