package executor

import "errors"

var (
	// ErrClosed is returned when posting to or calling into a closed executor
	ErrClosed = errors.New("executor: closed")

	// ErrInvalidInterval is returned by DrainUntil for a non-positive interval
	ErrInvalidInterval = errors.New("executor: interval must be positive")
)
