package task

import (
	"errors"
	"time"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// Step is one entry in a worker's trajectory: an opaque record of an
// internal action the worker took while producing its output. The
// orchestrator never interprets trajectories; only Output propagates
// forward into later subtasks' context.
type Step struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// ErrorInfo is the serializable failure record attached to a
// WorkerResult or a failed run. It carries enough context (subtask
// index, worker role, attempt count) to diagnose a failure without
// re-running the pipeline.
type ErrorInfo struct {
	// Kind is the error code of the failure.
	Kind types.ErrorCode `json:"kind"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Context holds diagnostic key-value pairs.
	Context map[string]string `json:"context,omitempty"`
}

// ErrorInfoFrom converts an error chain into an ErrorInfo record.
// Returns nil for a nil error. Errors that are not OrchestraErrors are
// recorded with an empty kind.
func ErrorInfoFrom(err error) *ErrorInfo {
	if err == nil {
		return nil
	}

	var orchErr *types.OrchestraError
	if errors.As(err, &orchErr) {
		info := &ErrorInfo{
			Kind:    orchErr.Code,
			Message: orchErr.Error(),
		}
		if len(orchErr.Context) > 0 {
			info.Context = make(map[string]string, len(orchErr.Context))
			for k, v := range orchErr.Context {
				info.Context[k] = v
			}
		}
		return info
	}

	return &ErrorInfo{Message: err.Error()}
}

// WorkerResult records one attempted subtask. Exactly one WorkerResult
// is appended per subtask, in plan order, whether the worker succeeded
// or failed; failures carry an ErrorInfo instead of being discarded.
type WorkerResult struct {
	// SubtaskIndex is the position of the subtask in the plan.
	SubtaskIndex int `json:"subtask_index"`

	// WorkerRole is the role that executed (or was asked to execute)
	// the subtask.
	WorkerRole string `json:"worker_role"`

	// Output is the worker's final output text. Empty on failure.
	Output string `json:"output,omitempty"`

	// Trajectory is the opaque record of the worker's internal steps.
	Trajectory []Step `json:"trajectory,omitempty"`

	// Error is set when the subtask failed after exhausting retries.
	Error *ErrorInfo `json:"error,omitempty"`

	// Attempts is how many invocations were made, including retries.
	Attempts int `json:"attempts"`

	// StartedAt is when the first attempt began.
	StartedAt time.Time `json:"started_at"`

	// Duration covers all attempts for this subtask.
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the subtask ended with a recorded error.
func (r WorkerResult) Failed() bool {
	return r.Error != nil
}
