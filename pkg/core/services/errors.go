package services

import "errors"

// ErrInvalidInput is returned when a request is well formed but not acceptable,
// such as signing up for a shift that has already started
var ErrInvalidInput = errors.New("invalid input")
