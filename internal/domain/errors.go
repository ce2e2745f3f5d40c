package domain

import "errors"

// Sentinel domain-level errors reused by higher layers.
var (
	ErrInvalidKey       = errors.New("invalid object key")
	ErrInvalidType      = errors.New("content type not allowed")
	ErrInvalidDirection = errors.New("invalid move direction")
)
