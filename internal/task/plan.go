package task

import "strings"

// Subtask is a single unit of work produced by the planner. It names the
// worker role responsible for it and the instruction that worker must
// carry out. Subtasks are immutable after planning except for the
// Completed flag, which the recorder flips once a result is appended.
type Subtask struct {
	// WorkerRole identifies which registered worker must run this subtask.
	WorkerRole string `json:"worker_role"`

	// Instruction is what the worker must do, in the planner's words.
	Instruction string `json:"instruction"`

	// Completed is set once a WorkerResult (success or failure) has been
	// recorded for this subtask.
	Completed bool `json:"completed"`
}

// Plan is the ordered list of subtasks produced once per run.
// Subtask order is the execution order; there is no dependency graph and
// no reordering. An empty subtask list is a valid plan and means the
// planner decided no work is needed before reporting.
type Plan struct {
	// Analysis is the planner's free-text rationale preceding the
	// subtask list.
	Analysis string `json:"analysis"`

	// Subtasks are executed strictly in slice order.
	Subtasks []Subtask `json:"subtasks"`
}

// IsEmpty reports whether the plan contains no subtasks.
func (p *Plan) IsEmpty() bool {
	return len(p.Subtasks) == 0
}

// Roles returns the distinct worker roles referenced by the plan,
// in first-appearance order.
func (p *Plan) Roles() []string {
	seen := make(map[string]struct{}, len(p.Subtasks))
	roles := make([]string, 0, len(p.Subtasks))
	for _, st := range p.Subtasks {
		if _, ok := seen[st.WorkerRole]; ok {
			continue
		}
		seen[st.WorkerRole] = struct{}{}
		roles = append(roles, st.WorkerRole)
	}
	return roles
}

// Describe renders a short human-readable listing of the plan, used in
// log output and report prompts.
func (p *Plan) Describe() string {
	if p.IsEmpty() {
		return "(no subtasks)"
	}
	var b strings.Builder
	for i, st := range p.Subtasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(st.WorkerRole)
		b.WriteString(": ")
		b.WriteString(st.Instruction)
	}
	return b.String()
}
