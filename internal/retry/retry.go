package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ArticlePublisher/internal/domain"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy retries a phase with a linearly increasing delay (attempt × BaseDelay).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       SleepFunc
	Logger      *slog.Logger
}

// Default returns the standard pipeline policy.
func Default() Policy {
	return Policy{MaxAttempts: defaultMaxAttempts, BaseDelay: defaultBaseDelay}
}

// Delay returns the wait before the attempt following attempt n (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	return time.Duration(attempt) * p.BaseDelay
}

// Do runs fn until it succeeds, returns a fatal error, or attempts run out.
// The final error is wrapped in a PhaseError naming the phase.
func (p Policy) Do(ctx context.Context, phase string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = contextSleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if domain.IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if attempt == attempts {
			break
		}

		delay := p.Delay(attempt)
		p.warn("phase failed, retrying", "phase", phase, "attempt", attempt, "delay", delay, "error", err)
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			err = fmt.Errorf("%w (retry interrupted: %v)", err, sleepErr)
			break
		}
	}

	return &domain.PhaseError{Phase: phase, Err: err}
}

// Value runs fn under p and returns its result.
func Value[T any](ctx context.Context, p Policy, phase string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, phase, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (p Policy) warn(msg string, args ...any) {
	if p.Logger != nil {
		p.Logger.Warn(msg, args...)
	}
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
