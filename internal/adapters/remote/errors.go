package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Client.
var (
	ErrFetch    = errors.New("remote fetch failed")
	ErrNotFound = errors.New("remote resource not found")
)

// StatusError carries a non-success HTTP status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}
