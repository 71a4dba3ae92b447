package source

import "errors"

// Sentinel errors returned by the acquisition boundary.
var (
	ErrInvalidRecord = errors.New("invalid play record")
	ErrOutOfOrder    = errors.New("plays out of order")
	ErrDecode        = errors.New("decode play-by-play")
	ErrNoGame        = errors.New("game not in play-by-play")
	ErrInvalidInning = errors.New("unrecognized inning label")
)
