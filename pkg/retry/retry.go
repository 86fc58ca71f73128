package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/c360/binfile/errors"
)

// Policy describes how often and how far apart an operation is attempted.
type Policy struct {
	Attempts int           // Total attempts, at least one
	Initial  time.Duration // Delay before the second attempt
	Max      time.Duration // Upper bound for any delay
	Factor   float64       // Growth of the delay per attempt
	Jitter   bool          // Add up to 25% random delay
}

// Startup suits connecting to infrastructure while the process boots. Five attempts
// stay at the NATS client's circuit breaker threshold.
func Startup() Policy {
	return Policy{
		Attempts: 5,
		Initial:  250 * time.Millisecond,
		Max:      5 * time.Second,
		Factor:   2.0,
		Jitter:   true,
	}
}

func (p Policy) normalized() (Policy, error) {
	if p.Initial < 0 || p.Max < 0 || p.Factor < 0 {
		return p, errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig, "negative retry policy value"),
			"Retry", "Do", "validate policy")
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Initial == 0 {
		p.Initial = 100 * time.Millisecond
	}
	if p.Max == 0 {
		p.Max = 5 * time.Second
	}
	if p.Factor < 1 {
		p.Factor = 2.0
	}
	if p.Max < p.Initial {
		p.Max = p.Initial
	}
	return p, nil
}

// Delay returns the wait after the given failed attempt (1-based), jitter excluded.
func (p Policy) Delay(attempt int) time.Duration {
	d := float64(p.Initial)
	for i := 1; i < attempt; i++ {
		d *= p.Factor
		if d >= float64(p.Max) {
			return p.Max
		}
	}
	return time.Duration(d)
}

// Do runs op until it succeeds, fails with an error that is not transient, the
// attempts are used up or ctx is done. Only transient errors are retried.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	p, err := p.normalized()
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Classify(lastErr) != errors.ErrorTransient {
			return lastErr
		}
		if attempt == p.Attempts {
			break
		}

		wait := p.Delay(attempt)
		if p.Jitter && wait >= 4 {
			wait += rand.N(wait / 4)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.WrapTransient(
				fmt.Errorf("cancelled after %d attempts: %w (last error: %v)", attempt, ctx.Err(), lastErr),
				"Retry", "Do", "wait for next attempt")
		case <-timer.C:
		}
	}

	return errors.WrapTransient(
		fmt.Errorf("gave up after %d attempts: %w", p.Attempts, lastErr),
		"Retry", "Do", "retry operation")
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, p, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
