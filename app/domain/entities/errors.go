package entities

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by ledger lookups for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotBound is returned when a command arrives before any working directory was bound.
var ErrNotBound = errors.New("not running")

// BindError reports a failed attempt to bind a working directory.
type BindError struct {
	WorkDir string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %q: %v", e.WorkDir, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
