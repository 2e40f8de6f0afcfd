package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("actor not found")
	ErrInvalidActor = errors.New("actor id must not be empty")
	ErrClosed       = errors.New("store closed")
)
