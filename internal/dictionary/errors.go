package dictionary

import "errors"

var (
	// ErrDuplicateKey is returned when an insert collides with an existing word.
	ErrDuplicateKey = errors.New("duplicate word")
	// ErrStore is returned when a durable write fails for any other reason.
	ErrStore = errors.New("store failure")
)
