package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    RunStatus
		to      RunStatus
		allowed bool
	}{
		{RunStatusPending, RunStatusPlanning, true},
		{RunStatusPending, RunStatusExecuting, false},
		{RunStatusPending, RunStatusFailed, true},
		{RunStatusPlanning, RunStatusExecuting, true},
		{RunStatusPlanning, RunStatusReporting, false},
		{RunStatusPlanning, RunStatusFailed, true},
		{RunStatusExecuting, RunStatusReporting, true},
		{RunStatusExecuting, RunStatusDone, false},
		{RunStatusExecuting, RunStatusFailed, true},
		{RunStatusReporting, RunStatusDone, true},
		{RunStatusReporting, RunStatusExecuting, false},
		{RunStatusReporting, RunStatusFailed, true},
		{RunStatusDone, RunStatusFailed, false},
		{RunStatusDone, RunStatusPlanning, false},
		{RunStatusFailed, RunStatusPlanning, false},
		{RunStatusFailed, RunStatusDone, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRunStatus_IsTerminal(t *testing.T) {
	assert.True(t, RunStatusDone.IsTerminal())
	assert.True(t, RunStatusFailed.IsTerminal())
	assert.False(t, RunStatusPending.IsTerminal())
	assert.False(t, RunStatusPlanning.IsTerminal())
	assert.False(t, RunStatusExecuting.IsTerminal())
	assert.False(t, RunStatusReporting.IsTerminal())
}

func TestPlan_Roles(t *testing.T) {
	p := Plan{Subtasks: []Subtask{
		{WorkerRole: "fetch"},
		{WorkerRole: "compute"},
		{WorkerRole: "fetch"},
		{WorkerRole: "summarize"},
	}}
	assert.Equal(t, []string{"fetch", "compute", "summarize"}, p.Roles())
}

func TestPlan_IsEmpty(t *testing.T) {
	assert.True(t, (&Plan{}).IsEmpty())
	assert.False(t, (&Plan{Subtasks: []Subtask{{WorkerRole: "fetch"}}}).IsEmpty())
}
