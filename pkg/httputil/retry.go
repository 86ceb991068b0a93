package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure for [Retry]. After, when set,
// is the server's requested wait and overrides the backoff for that attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped in a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy controls [Retry].
type Policy struct {
	Attempts int           // total calls, at least 1
	Delay    time.Duration // wait before the second call; doubles after that
	MaxDelay time.Duration // cap on any single wait, 0 for none

	// OnRetry is called before each wait with the number of the upcoming
	// attempt (starting at 2).
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultPolicy is 3 attempts starting at 1s, capped at 30s.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// wait picks the pause before the next attempt.
func (p Policy) wait(backoff time.Duration, err error) time.Duration {
	d := backoff
	var re *RetryableError
	if errors.As(err, &re) && re.After > 0 {
		d = re.After
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn until it succeeds, returns a non-retryable error or the
// attempts run out. It returns the last error, or ctx.Err() if ctx ends
// while waiting.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	backoff := p.Delay

	var lastErr error
	for i := 1; i <= attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) || i == attempts {
			break
		}

		d := p.wait(backoff, err)
		if p.OnRetry != nil {
			p.OnRetry(i+1, d, err)
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}
	return lastErr
}

// Retry is Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn).
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryWithBackoff runs fn under [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}
