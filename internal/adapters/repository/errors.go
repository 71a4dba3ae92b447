package repository

import "errors"

// Sentinel errors returned by the stores.
var (
	ErrNotFound     = errors.New("game not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrInvalidCard  = errors.New("scorecard has no game id")
)
