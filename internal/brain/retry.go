package brain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// RetryPolicy bounds repeated brain invocations. Each attempt runs
// under its own timeout; transient failures (timeouts, transport
// errors, rate limits) are retried with a growing delay until the
// attempt budget is spent.
type RetryPolicy struct {
	// MaxAttempts is the total number of invocations, including the
	// first. Values below 1 are treated as 1.
	MaxAttempts int

	// Delay is the wait before the first retry.
	Delay time.Duration

	// BackoffFactor multiplies the delay after each retry.
	// Values below 1 are treated as 1 (fixed delay).
	BackoffFactor float64

	// CallTimeout caps a single invocation. Zero means no per-call
	// timeout beyond the caller's context.
	CallTimeout time.Duration
}

// DefaultRetryPolicy returns the policy used when configuration does
// not override it: three attempts, two second initial delay, doubling,
// five minute per-call timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		Delay:         2 * time.Second,
		BackoffFactor: 2.0,
		CallTimeout:   5 * time.Minute,
	}
}

// Attempts returns the sanitized attempt budget.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// delayFor returns the wait before retrying after the given 1-based
// failed attempt.
func (p RetryPolicy) delayFor(attempt int) time.Duration {
	d := p.Delay
	factor := p.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * factor)
	}
	return d
}

// Wait blocks for the backoff delay following the given failed attempt,
// or until the context is cancelled.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	d := p.delayFor(attempt)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return types.WrapError(types.RUN_CANCELLED, "cancelled during retry backoff", ctx.Err())
	}
}

// InvokeOnce performs a single brain invocation under the policy's
// per-call timeout and translates the outcome. An empty response is an
// error: downstream parsing has nothing to work with, and a retry may
// yield a usable response.
func InvokeOnce(ctx context.Context, b Brain, prompt string, callTimeout time.Duration) (string, error) {
	callCtx := ctx
	if callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, callTimeout)
		defer cancel()
	}

	response, err := b.Invoke(callCtx, prompt)
	if err != nil {
		// Distinguish the caller's cancellation from the per-call
		// deadline: only the latter is retryable.
		if ctx.Err() != nil {
			return "", types.WrapError(types.RUN_CANCELLED,
				"brain call cancelled", ctx.Err()).
				WithContext("backend", b.Name())
		}
		return "", TranslateError(b.Name(), err)
	}

	if response == "" {
		return "", types.NewRetryableError(types.BRAIN_EMPTY_RESPONSE,
			"brain returned an empty response").
			WithContext("backend", b.Name())
	}

	return response, nil
}

// Invoke calls the brain with bounded retries per the policy. Transient
// failures are retried after a backoff delay; non-retryable failures
// and caller cancellation return immediately. On exhaustion the last
// error is returned with the attempt count attached.
func Invoke(ctx context.Context, b Brain, prompt string, policy RetryPolicy) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= policy.Attempts(); attempt++ {
		response, err := InvokeOnce(ctx, b, prompt, policy.CallTimeout)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !types.IsRetryable(err) {
			return "", err
		}
		if attempt == policy.Attempts() {
			break
		}
		if werr := policy.Wait(ctx, attempt); werr != nil {
			return "", werr
		}
	}

	var orchErr *types.OrchestraError
	if e, ok := lastErr.(*types.OrchestraError); ok {
		orchErr = e
	} else {
		orchErr = types.WrapError(types.BRAIN_INVOCATION_FAILED,
			fmt.Sprintf("brain %s failed", b.Name()), lastErr)
	}
	return "", orchErr.WithContext("attempts", strconv.Itoa(policy.Attempts()))
}
