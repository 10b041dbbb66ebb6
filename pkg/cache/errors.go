package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks failures to reach a cache backend.
var ErrNetwork = errors.New("network error")

// RetryableError marks an error that a [RetryPolicy] may retry.
type RetryableError struct{ Err error }

// Retryable wraps err so that [RetryPolicy.Do] retries it. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryPolicy bounds how often a backend call is attempted. The delay
// doubles after every failed attempt.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy is used by backends when no policy is configured.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 200 * time.Millisecond}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultRetryPolicy.Attempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultRetryPolicy.Delay
	}
	return p
}

// Do calls fn until it succeeds, returns an error that is not retryable,
// or the attempts are used up. It returns ctx.Err() when ctx ends while
// waiting between attempts.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	p = p.normalize()
	delay := p.Delay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == p.Attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
