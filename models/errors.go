package models

import "errors"

var (
	// ErrInvalidInput marks out-of-domain parameters. Callers match it with errors.Is.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUndefinedResult marks a mathematically undefined output, such as the
	// expected shortfall of an empty tail.
	ErrUndefinedResult = errors.New("undefined result")
)
