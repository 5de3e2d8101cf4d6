package retry

import (
	"context"
	"fmt"
	"time"
)

// SleepFunc waits for d or until ctx is done, whichever
// comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy is a bounded retry strategy with a fixed delay
// between attempts.
type Policy struct {
	// Attempts is the total number of attempts, including
	// the first one.
	Attempts int
	Delay    time.Duration
	// Sleep defaults to a context-aware timer.
	Sleep SleepFunc
}

// ExhaustedError is returned when every attempt failed
// with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %s", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

const (
	DefaultAttempts = 3
	DefaultDelay    = 5 * time.Second
)
