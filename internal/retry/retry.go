package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/paperbridge/internal/remote"
)

const DefaultMaxAttempts = 3

// Error is returned once an operation has failed for good, either because the
// attempts ran out or because the failure was not worth retrying.
// Its message is the message of the last failure, followed by the context error
// when cancellation cut the waiting short.
type Error struct {
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Executor runs operations with bounded, linearly backed-off retries.
type Executor struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// IsTransient decides whether a failure is retried. Defaults to remote.IsTransient.
	IsTransient func(error) bool

	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func New(maxAttempts int, baseDelay time.Duration) Executor {
	return Executor{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// MaxWait is the longest total time Do can spend waiting between attempts.
func (e Executor) MaxWait() time.Duration {
	n := e.attempts()

	return e.BaseDelay * time.Duration(n*(n-1)/2)
}

func (e Executor) attempts() int {
	if e.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}

	return e.MaxAttempts
}

// Do invokes op until it succeeds, fails with a permanent error, or runs out of attempts.
// After the n-th transient failure it waits BaseDelay*n before trying again.
func Do[T any](ctx context.Context, e Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	isTransient := e.IsTransient
	if isTransient == nil {
		isTransient = remote.IsTransient
	}

	sleep := e.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	maxAttempts := e.attempts()

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if !isTransient(err) || attempt == maxAttempts {
			return zero, &Error{Attempts: attempt, Err: err}
		}

		delay := e.BaseDelay * time.Duration(attempt)

		slog.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay", delay,
			"error", err)

		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return zero, &Error{Attempts: attempt, Err: errors.Join(err, sleepErr)}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
