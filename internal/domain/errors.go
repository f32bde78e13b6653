package domain

import "errors"

// Shared sentinel errors. Component-specific sentinels live next to their type.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
