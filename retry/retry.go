// Package retry runs operations with bounded exponential backoff. Only
// transient failures are worth retrying; wrap validation or malformed-payload
// errors with Permanent to stop immediately.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config bounds a retry loop: the first attempt plus MaxRetries more, with
// the delay doubling from InitialDelay up to MaxDelay.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig mirrors the session-check backoff shape: three retries,
// starting at 3s and capped at 50s.
var DefaultConfig = Config{
	MaxRetries:   3,
	InitialDelay: 3 * time.Second,
	MaxDelay:     50 * time.Second,
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, returns a permanent error, exhausts the
// attempt budget, or the context is done.
func Do(ctx context.Context, cfg Config, op func() error) error {
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}

	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		err := op()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}
	return lastErr
}
