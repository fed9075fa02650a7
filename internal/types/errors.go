package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for orchestration errors.
type ErrorCode string

// Planning error codes
const (
	PLANNING_PARSE_FAILED      ErrorCode = "PLANNING_PARSE_FAILED"
	PLANNING_UNKNOWN_WORKER    ErrorCode = "PLANNING_UNKNOWN_WORKER"
	PLANNING_FAILED            ErrorCode = "PLANNING_FAILED"
	PLANNING_RETRIES_EXHAUSTED ErrorCode = "PLANNING_RETRIES_EXHAUSTED"
)

// Execution error codes
const (
	EXEC_UNKNOWN_WORKER ErrorCode = "EXEC_UNKNOWN_WORKER"
	EXEC_SUBTASK_FAILED ErrorCode = "EXEC_SUBTASK_FAILED"
	EXEC_ABORTED        ErrorCode = "EXEC_ABORTED"
)

// Reporting error codes
const (
	REPORTING_FAILED ErrorCode = "REPORTING_FAILED"
)

// Brain invocation error codes
const (
	BRAIN_INVOCATION_FAILED ErrorCode = "BRAIN_INVOCATION_FAILED"
	BRAIN_TIMEOUT           ErrorCode = "BRAIN_TIMEOUT"
	BRAIN_EMPTY_RESPONSE    ErrorCode = "BRAIN_EMPTY_RESPONSE"
	BRAIN_RATE_LIMITED      ErrorCode = "BRAIN_RATE_LIMITED"
)

// Recorder invariant error codes. Violations of these indicate a
// programming error and are never retried.
const (
	RECORDER_INVALID_TRANSITION  ErrorCode = "RECORDER_INVALID_TRANSITION"
	RECORDER_OUT_OF_ORDER_RESULT ErrorCode = "RECORDER_OUT_OF_ORDER_RESULT"
)

// Run lifecycle error codes
const (
	RUN_CANCELLED ErrorCode = "RUN_CANCELLED"
)

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// OrchestraError represents a structured error with error code, message,
// and optional cause. It supports error wrapping and retryability hints
// for error handling logic, and carries a string context map so failures
// can be diagnosed (which subtask, which worker, which attempt) without
// re-running the pipeline.
type OrchestraError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
	Context   map[string]string
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *OrchestraError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *OrchestraError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an OrchestraError with the same Code.
func (e *OrchestraError) Is(target error) bool {
	var orchErr *OrchestraError
	if errors.As(target, &orchErr) {
		return e.Code == orchErr.Code
	}
	return false
}

// WithContext attaches a key-value pair to the error's context map and
// returns the error for chaining.
func (e *OrchestraError) WithContext(key, value string) *OrchestraError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewError creates a new non-retryable OrchestraError with the given code and message.
func NewError(code ErrorCode, message string) *OrchestraError {
	return &OrchestraError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable OrchestraError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *OrchestraError {
	return &OrchestraError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable OrchestraError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *OrchestraError {
	return &OrchestraError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapRetryableError creates a retryable OrchestraError that wraps an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *OrchestraError {
	return &OrchestraError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// IsRetryable reports whether an error is transient and may succeed on
// retry. Recorder invariant violations and cancellation are never
// retryable regardless of how they were constructed.
func IsRetryable(err error) bool {
	var orchErr *OrchestraError
	if !errors.As(err, &orchErr) {
		return false
	}

	switch orchErr.Code {
	case RECORDER_INVALID_TRANSITION, RECORDER_OUT_OF_ORDER_RESULT,
		RUN_CANCELLED, PLANNING_UNKNOWN_WORKER, EXEC_UNKNOWN_WORKER:
		return false
	case BRAIN_TIMEOUT, BRAIN_RATE_LIMITED:
		return true
	}

	return orchErr.Retryable
}

// ErrorCodeOf extracts the ErrorCode from an error chain.
// Returns an empty code if the chain contains no OrchestraError.
func ErrorCodeOf(err error) ErrorCode {
	var orchErr *OrchestraError
	if errors.As(err, &orchErr) {
		return orchErr.Code
	}
	return ""
}
