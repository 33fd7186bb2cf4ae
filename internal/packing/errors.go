package packing

import "errors"

var (
	// ErrUnknownStrategy is returned when a strategy name is not recognised.
	ErrUnknownStrategy = errors.New("unknown packing strategy")
	// ErrInvalidGridStep is returned when the placement grid step is not positive.
	ErrInvalidGridStep = errors.New("grid step must be a positive number")
)
