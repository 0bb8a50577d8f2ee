package dom

import "errors"

var (
	// ErrNoBody is returned when parsed HTML has no body element.
	ErrNoBody = errors.New("dom: html has no body")
)
