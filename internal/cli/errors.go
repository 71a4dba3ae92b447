package cli

import "errors"

// Sentinel errors returned by Run.
var (
	ErrNoInput  = errors.New("no input: set -file or -game")
	ErrSubmit   = errors.New("submit game")
	ErrNotReady = errors.New("scorecard not ready")
)
