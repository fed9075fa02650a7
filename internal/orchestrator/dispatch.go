package orchestrator

import (
	"context"
	"strconv"
	"time"

	"github.com/orchestra-ai/orchestra/internal/task"
	"github.com/orchestra-ai/orchestra/internal/types"
	"github.com/orchestra-ai/orchestra/internal/worker"
)

// dispatch runs one subtask to completion, applying the worker retry
// policy. It always returns a WorkerResult; failure lands in the
// result's Error field rather than an error return, because the record
// gets one result per subtask no matter what happened.
func (o *Orchestrator) dispatch(ctx context.Context, rec *task.Recorder, index int, st task.Subtask) task.WorkerResult {
	result := task.WorkerResult{
		SubtaskIndex: index,
		WorkerRole:   st.WorkerRole,
		StartedAt:    time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
	}()

	// The planner validated roles, but the registry is the authority;
	// re-check so a stale plan cannot reach a nil worker.
	w, err := o.registry.Get(st.WorkerRole)
	if err != nil {
		result.Attempts = 1
		result.Error = task.ErrorInfoFrom(err)
		return result
	}

	input := worker.Input{
		Request:       rec.Request(),
		Instruction:   st.Instruction,
		ContextDigest: worker.BuildDigest(rec.Results(), o.digestLimit),
		TraceID:       rec.TraceID(),
	}

	attempts := o.policy.Attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result.Attempts = attempt

		output, err := o.invokeWorker(ctx, w, input)
		if err == nil {
			result.Output = output.Text
			result.Trajectory = output.Trajectory
			return result
		}
		lastErr = err

		if !types.IsRetryable(err) {
			break
		}
		if attempt < attempts {
			if werr := o.policy.Wait(ctx, attempt); werr != nil {
				lastErr = werr
				break
			}
		}
	}

	result.Error = task.ErrorInfoFrom(wrapSubtaskFailure(lastErr, index, st.WorkerRole, result.Attempts))
	return result
}

// invokeWorker performs a single worker call under the per-call
// timeout, distinguishing run cancellation from the call deadline.
func (o *Orchestrator) invokeWorker(ctx context.Context, w worker.Worker, input worker.Input) (worker.Output, error) {
	callCtx := ctx
	if o.policy.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.policy.CallTimeout)
		defer cancel()
	}

	output, err := w.Invoke(callCtx, input)
	if err != nil {
		if ctx.Err() != nil {
			return worker.Output{}, types.WrapError(types.RUN_CANCELLED,
				"worker call cancelled", ctx.Err()).
				WithContext("role", w.Role())
		}
		if callCtx.Err() == context.DeadlineExceeded {
			return worker.Output{}, types.WrapRetryableError(types.BRAIN_TIMEOUT,
				"worker call exceeded per-call timeout", err).
				WithContext("role", w.Role()).
				WithContext("timeout", o.policy.CallTimeout.String())
		}
		return worker.Output{}, err
	}
	return output, nil
}

// wrapSubtaskFailure tags a worker failure with enough context to
// diagnose it from the record alone. Cancellation and unknown-role
// errors keep their own codes; everything else becomes a subtask
// failure wrapping the cause.
func wrapSubtaskFailure(err error, index int, role string, attempts int) error {
	code := types.ErrorCodeOf(err)
	if code == types.RUN_CANCELLED || code == types.EXEC_UNKNOWN_WORKER {
		return err
	}
	return types.WrapError(types.EXEC_SUBTASK_FAILED, "subtask failed", err).
		WithContext("subtask_index", strconv.Itoa(index)).
		WithContext("role", role).
		WithContext("attempts", strconv.Itoa(attempts))
}
