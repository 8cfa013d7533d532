package model

import "errors"

var (
	// ErrInvalidArgument indicates a caller passed a value outside the
	// operation's domain, such as a negative elapsed quantity.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidSymbols indicates an unusable glyph configuration.
	ErrInvalidSymbols = errors.New("invalid symbol setting")
)
