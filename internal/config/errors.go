package config

import "errors"

var (
	// ErrInvalid indicates a configuration value out of its allowed range.
	ErrInvalid = errors.New("config: invalid value")
)
