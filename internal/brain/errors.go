package brain

import (
	"context"
	"errors"
	"strings"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// TranslateError converts a backend error into an OrchestraError with
// the appropriate code and retryability. Errors that are already
// OrchestraErrors pass through untouched.
func TranslateError(backend string, err error) error {
	if err == nil {
		return nil
	}

	var orchErr *types.OrchestraError
	if errors.As(err, &orchErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return types.WrapRetryableError(types.BRAIN_TIMEOUT,
			"brain call timed out", err).
			WithContext("backend", backend)
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapError(types.RUN_CANCELLED,
			"brain call cancelled", err).
			WithContext("backend", backend)
	}

	lowerMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests"):
		return types.WrapRetryableError(types.BRAIN_RATE_LIMITED,
			"backend rate limited", err).
			WithContext("backend", backend)
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline"):
		return types.WrapRetryableError(types.BRAIN_TIMEOUT,
			"backend timed out", err).
			WithContext("backend", backend)
	case strings.Contains(lowerMsg, "unauthorized") || strings.Contains(lowerMsg, "api key"):
		return types.WrapError(types.BRAIN_INVOCATION_FAILED,
			"backend authentication failed", err).
			WithContext("backend", backend)
	default:
		return types.WrapRetryableError(types.BRAIN_INVOCATION_FAILED,
			"brain invocation failed", err).
			WithContext("backend", backend)
	}
}
