package domain

import "errors"

var (
	// ErrInvalidArgument rejects malformed query input (non-positive radius,
	// inverted bounds, zoom out of range) before any store call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrListingNotFound is returned by the store when an id does not exist.
	ErrListingNotFound = errors.New("listing not found")

	// ErrResultSetTooLarge fails fast when a scan would exceed the configured
	// cap instead of silently materializing an unbounded result set.
	ErrResultSetTooLarge = errors.New("result set too large")
)
