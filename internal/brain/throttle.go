package brain

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled wraps a Brain with a token-bucket rate limiter. Brain
// handles are shared across concurrent runs, so the limiter bounds the
// aggregate request rate against the backend rather than any single
// run's rate.
type Throttled struct {
	inner   Brain
	limiter *rate.Limiter
}

// NewThrottled wraps b so that invocations are admitted at most rps per
// second with the given burst. A non-positive rps disables throttling.
func NewThrottled(b Brain, rps float64, burst int) *Throttled {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Throttled{inner: b, limiter: limiter}
}

// Name implements Brain.
func (t *Throttled) Name() string {
	return t.inner.Name()
}

// Invoke waits for limiter admission, then delegates to the wrapped
// brain. Waiting respects context cancellation and deadlines.
func (t *Throttled) Invoke(ctx context.Context, prompt string) (string, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", TranslateError(t.inner.Name(), err)
		}
	}
	return t.inner.Invoke(ctx, prompt)
}

var _ Brain = (*Throttled)(nil)
