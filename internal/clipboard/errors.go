package clipboard

import "errors"

var (
	// ErrNamespaceMismatch is returned for native payloads copied from
	// another document namespace.
	ErrNamespaceMismatch = errors.New("clipboard: namespace mismatch")

	// ErrInvalidPayload is returned for native payloads that are not a
	// namespace and node list.
	ErrInvalidPayload = errors.New("clipboard: invalid payload")
)
