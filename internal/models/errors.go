package models

import "errors"

// Custom errors
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingResource      = errors.New("missing resource")
	ErrNotFound             = errors.New("record not found")
)
