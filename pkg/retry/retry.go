package retry

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
)

// Default returns the catalog retry policy: 3 attempts,
// 5 seconds apart.
func Default() Policy {
	return Policy{
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Retryable marks err as transient so that Do will try again.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable returns true if err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Do calls fn until it succeeds, returns an error that is not
// retryable, ctx is done or the attempts are used up. Retryable
// errors are unwrapped before being returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	log := logr.FromContextOrDiscard(ctx)

	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		var re *retryableError
		if !errors.As(err, &re) {
			return err
		}
		lastErr = re.err
		log.Info("attempt failed", "attempt", attempt, "attempts", attempts, "err", lastErr.Error())

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}
	}
	return &ExhaustedError{
		Attempts: attempts,
		Err:      lastErr,
	}
}

// Sleep pauses the calling goroutine only. It returns
// the context error if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
