package service

import (
	"context"
	"errors"
	"fmt"
	"pbpbot/internal/core/domain"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds a remote call with a per-attempt deadline and a limited number of attempts.
type RetryPolicy struct {
	Timeout     time.Duration
	MaxAttempts int
	// Delay is the pause after a failed attempt. With Linear set the pause after attempt n is Delay*n.
	Delay  time.Duration
	Linear bool
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func (p RetryPolicy) backoff() retry.Backoff {
	attempt := 0
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		if attempt >= attempts {
			return 0, true
		}
		if p.Linear {
			return p.Delay * time.Duration(attempt), false
		}
		return p.Delay, false
	})
}

// Do runs op until it succeeds or the attempts are exhausted, returning the last failure.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Call(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Call is Do for operations that produce a value.
func Call[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0

	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++

		v, err := runAttempt(ctx, p.Timeout, op)
		if err == nil {
			result = v
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		log.Debug().Err(err).Int("attempt", attempt).Int("maxAttempts", p.MaxAttempts).Msg("remote call failed")
		return retry.RetryableError(err)
	})
	if err != nil {
		return result, fmt.Errorf("failed after %d attempt(s): %w", attempt, err)
	}

	return result, nil
}

type attemptResult[T any] struct {
	value T
	err   error
}

// runAttempt abandons op once timeout elapses. An abandoned op keeps running until it observes its
// cancelled context, but its result is discarded.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult[T], 1)
	go func() {
		v, err := op(attemptCtx)
		done <- attemptResult[T]{value: v, err: err}
	}()

	var zero T
	select {
	case res := <-done:
		if res.err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w: %w", domain.ErrTimeout, res.err)
		}
		return res.value, res.err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return zero, Permanent(ctx.Err())
		}
		return zero, domain.ErrTimeout
	}
}
