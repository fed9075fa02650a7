package task

// RunStatus represents the lifecycle phase of an orchestration run.
type RunStatus string

const (
	// RunStatusPending indicates the run has been created but not started.
	RunStatusPending RunStatus = "pending"

	// RunStatusPlanning indicates the planner is producing the plan.
	RunStatusPlanning RunStatus = "planning"

	// RunStatusExecuting indicates subtasks are being dispatched in order.
	RunStatusExecuting RunStatus = "executing"

	// RunStatusReporting indicates the reporter is synthesizing the final output.
	RunStatusReporting RunStatus = "reporting"

	// RunStatusDone indicates the run completed with a final output.
	RunStatusDone RunStatus = "done"

	// RunStatusFailed indicates the run terminated without a final output.
	RunStatusFailed RunStatus = "failed"
)

// String returns the string representation of the status.
func (s RunStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is a terminal state.
// A recorder in a terminal state rejects all further mutation.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusDone || s == RunStatusFailed
}

// CanTransitionTo validates whether a state transition is allowed.
// The run lifecycle is strictly linear; the only branch is that any
// non-terminal state may transition to failed.
func (s RunStatus) CanTransitionTo(target RunStatus) bool {
	if s.IsTerminal() {
		return false
	}

	if target == RunStatusFailed {
		return true
	}

	switch s {
	case RunStatusPending:
		return target == RunStatusPlanning
	case RunStatusPlanning:
		return target == RunStatusExecuting
	case RunStatusExecuting:
		return target == RunStatusReporting
	case RunStatusReporting:
		return target == RunStatusDone
	default:
		return false
	}
}
