// Package retry provides a bounded-retry wrapper for fallible remote calls.
// Only errors the policy's predicate accepts are retried; everything else
// fails on the first attempt so programming errors are never masked.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rafaelqm/imovia/internal/common"
)

// Policy describes the retry budget for one invocation.
type Policy struct {
	MaxAttempts       int                   // >= 1
	InitialDelay      time.Duration         // delay before attempt 2
	BackoffMultiplier float64               // >= 1
	Retryable         func(error) bool      // nil -> nothing is retryable
}

// DefaultPolicy is the gateway-wide budget: 3 attempts, 2s initial delay,
// doubling between attempts.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      2 * time.Second,
		BackoffMultiplier: 2,
		Retryable:         retryable,
	}
}

// DelayForAttempt returns the wait preceding attempt n (1-indexed).
// Attempt 1 runs immediately; attempt n (n >= 2) waits
// InitialDelay * BackoffMultiplier^(n-2).
func (p Policy) DelayForAttempt(n int) time.Duration {
	if n < 2 {
		return 0
	}
	mult := p.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	return time.Duration(float64(p.InitialDelay) * math.Pow(mult, float64(n-2)))
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	if p.BackoffMultiplier < 1 {
		p.BackoffMultiplier = 1
	}
	return p
}

// Invoker drives retryable invocations. It owns no per-call state; one
// Invoker is safe for concurrent use.
type Invoker struct {
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

type Option func(*Invoker)

// WithSleep replaces the backoff wait. Tests use it to observe delays
// without slowing down.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(i *Invoker) {
		if fn != nil {
			i.sleep = fn
		}
	}
}

func NewInvoker(logger *slog.Logger, opts ...Option) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	inv := &Invoker{
		logger: logger,
		sleep:  sleepCtx,
	}
	for _, o := range opts {
		o(inv)
	}
	return inv
}

// Invoke runs fn under the policy. Attempt 1 executes immediately; after a
// failure the call is retried only while attempts remain AND the predicate
// accepts the error. A predicate rejection returns the error as-is; running
// out of attempts wraps the last error in common.ErrRetriesExhausted.
// The backoff wait honors ctx, so callers can abandon an in-flight
// invocation between attempts.
func Invoke[T any](ctx context.Context, inv *Invoker, op string, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	policy = policy.normalized()

	reqID := uuid.New().String()
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := policy.DelayForAttempt(attempt)
			inv.logger.Warn("retry.backoff",
				"req_id", reqID, "op", op,
				"attempt", attempt, "max_attempts", policy.MaxAttempts,
				"delay_ms", delay.Milliseconds(),
				"error", lastErr,
			)
			if err := inv.sleep(ctx, delay); err != nil {
				return zero, fmt.Errorf("%s: %w", op, err)
			}
		}

		out, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				inv.logger.Info("retry.recovered", "req_id", reqID, "op", op, "attempt", attempt)
			}
			return out, nil
		}
		lastErr = err

		if policy.Retryable == nil || !policy.Retryable(err) {
			// Fatal class: fail immediately, no wrapping that would hide it.
			return zero, err
		}
	}

	return zero, common.NewAppError("RETRIES_EXHAUSTED",
		fmt.Sprintf("%s failed after %d attempts", op, policy.MaxAttempts),
		fmt.Errorf("%w: %w", common.ErrRetriesExhausted, lastErr))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
