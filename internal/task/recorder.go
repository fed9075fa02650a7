package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// Recorder is the mutable run-scoped record of one orchestration run:
// the request, the plan, every worker result in plan order, and the
// final synthesized output. It is created at run start, owned by the
// orchestrator for the lifetime of the run, and immutable once its
// status reaches done or failed.
//
// All mutation is guarded: transitions that violate the run lifecycle
// fail with RECORDER_INVALID_TRANSITION and appends that would create a
// gap or reorder results fail with RECORDER_OUT_OF_ORDER_RESULT. The
// recorder holds no side effects beyond in-memory state; logging and
// event emission are layered on top by the orchestrator.
//
// A Recorder is never shared across runs. Methods are safe for
// concurrent use so a streaming consumer may read while the run loop
// writes.
type Recorder struct {
	mu sync.RWMutex

	request     string
	traceID     types.ID
	status      RunStatus
	plan        *Plan
	results     []WorkerResult
	finalOutput string
	failure     *ErrorInfo
	startedAt   time.Time
	completedAt *time.Time
}

// NewRecorder creates a pending recorder for the given request.
// A zero traceID is replaced with a freshly generated one.
func NewRecorder(request string, traceID types.ID) *Recorder {
	if traceID.IsZero() {
		traceID = types.NewID()
	}
	return &Recorder{
		request:   request,
		traceID:   traceID,
		status:    RunStatusPending,
		startedAt: time.Now(),
	}
}

// Request returns the original free-form request.
func (r *Recorder) Request() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.request
}

// TraceID returns the correlation ID assigned at creation.
func (r *Recorder) TraceID() types.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.traceID
}

// Status returns the current lifecycle status.
func (r *Recorder) Status() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Plan returns a copy of the attached plan, or nil before planning
// completed.
func (r *Recorder) Plan() *Plan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.plan == nil {
		return nil
	}
	cp := &Plan{
		Analysis: r.plan.Analysis,
		Subtasks: make([]Subtask, len(r.plan.Subtasks)),
	}
	copy(cp.Subtasks, r.plan.Subtasks)
	return cp
}

// Results returns a copy of the worker results recorded so far,
// in plan order.
func (r *Recorder) Results() []WorkerResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WorkerResult, len(r.results))
	copy(out, r.results)
	return out
}

// FinalOutput returns the synthesized report, or empty before the run
// is done.
func (r *Recorder) FinalOutput() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finalOutput
}

// Failure returns the failure record for a failed run, nil otherwise.
func (r *Recorder) Failure() *ErrorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failure
}

// StartedAt returns the run creation time.
func (r *Recorder) StartedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.startedAt
}

// CompletedAt returns the time the run reached a terminal status,
// or nil while still in flight.
func (r *Recorder) CompletedAt() *time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.completedAt
}

// BeginPlanning transitions the run from pending to planning.
func (r *Recorder) BeginPlanning() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transition(RunStatusPlanning)
}

// AttachPlan stores the plan and transitions the run from planning to
// executing. It fails with RECORDER_INVALID_TRANSITION if a plan is
// already attached or planning has not started.
func (r *Recorder) AttachPlan(plan Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plan != nil {
		return types.NewError(types.RECORDER_INVALID_TRANSITION,
			"plan already attached").
			WithContext("trace_id", r.traceID.String())
	}
	if err := r.transition(RunStatusExecuting); err != nil {
		return err
	}

	r.plan = &plan
	r.results = make([]WorkerResult, 0, len(plan.Subtasks))
	return nil
}

// AppendResult records the result of the next subtask in plan order and
// marks that subtask completed. The result's SubtaskIndex must equal
// the number of results recorded so far: no gaps, no out-of-order
// insertion, no duplicates. This invariant is checked before anything
// else, so an out-of-order append is rejected regardless of run state.
func (r *Recorder) AppendResult(result WorkerResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.SubtaskIndex != len(r.results) {
		return types.NewError(types.RECORDER_OUT_OF_ORDER_RESULT,
			fmt.Sprintf("result index %d, expected %d", result.SubtaskIndex, len(r.results))).
			WithContext("trace_id", r.traceID.String()).
			WithContext("worker_role", result.WorkerRole)
	}

	if r.status != RunStatusExecuting {
		return types.NewError(types.RECORDER_INVALID_TRANSITION,
			fmt.Sprintf("cannot append result while %s", r.status)).
			WithContext("trace_id", r.traceID.String())
	}
	if r.plan == nil || result.SubtaskIndex >= len(r.plan.Subtasks) {
		return types.NewError(types.RECORDER_OUT_OF_ORDER_RESULT,
			fmt.Sprintf("result index %d exceeds plan size", result.SubtaskIndex)).
			WithContext("trace_id", r.traceID.String())
	}

	r.results = append(r.results, result)
	r.plan.Subtasks[result.SubtaskIndex].Completed = true
	return nil
}

// BeginReporting transitions the run from executing to reporting.
// Every planned subtask must have a recorded result (success or
// failure) before reporting may start.
func (r *Recorder) BeginReporting() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plan != nil && len(r.results) != len(r.plan.Subtasks) {
		return types.NewError(types.RECORDER_INVALID_TRANSITION,
			fmt.Sprintf("reporting requires all subtasks recorded: %d of %d",
				len(r.results), len(r.plan.Subtasks))).
			WithContext("trace_id", r.traceID.String())
	}

	return r.transition(RunStatusReporting)
}

// Finalize stores the synthesized output and transitions the run to
// done. The recorder is immutable afterwards.
func (r *Recorder) Finalize(output string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.transition(RunStatusDone); err != nil {
		return err
	}

	r.finalOutput = output
	now := time.Now()
	r.completedAt = &now
	return nil
}

// Abort transitions the run to failed from any non-terminal state,
// recording the cause. Aborting an already-terminal run is rejected.
func (r *Recorder) Abort(cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.transition(RunStatusFailed); err != nil {
		return err
	}

	r.failure = ErrorInfoFrom(cause)
	now := time.Now()
	r.completedAt = &now
	return nil
}

// transition moves the recorder to target if the run lifecycle allows
// it. Callers must hold the write lock.
func (r *Recorder) transition(target RunStatus) error {
	if !r.status.CanTransitionTo(target) {
		return types.NewError(types.RECORDER_INVALID_TRANSITION,
			fmt.Sprintf("cannot transition from %s to %s", r.status, target)).
			WithContext("trace_id", r.traceID.String())
	}
	r.status = target
	return nil
}

// Summary is a point-in-time digest of a run, used for log output and
// CLI display.
type Summary struct {
	TraceID     types.ID      `json:"trace_id"`
	Status      RunStatus     `json:"status"`
	Subtasks    int           `json:"subtasks"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration"`
	FinalOutput bool          `json:"has_final_output"`
}

// Summary returns counts and timing for the run so far.
func (r *Recorder) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Summary{
		TraceID:     r.traceID,
		Status:      r.status,
		FinalOutput: r.finalOutput != "",
	}
	if r.plan != nil {
		s.Subtasks = len(r.plan.Subtasks)
	}
	for _, res := range r.results {
		if res.Failed() {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	if r.completedAt != nil {
		s.Duration = r.completedAt.Sub(r.startedAt)
	} else {
		s.Duration = time.Since(r.startedAt)
	}
	return s
}
