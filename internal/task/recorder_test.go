package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-ai/orchestra/internal/types"
)

func threeStepPlan() Plan {
	return Plan{
		Analysis: "fetch the data, compute ratios, summarize",
		Subtasks: []Subtask{
			{WorkerRole: "fetch", Instruction: "fetch statements for company X"},
			{WorkerRole: "compute", Instruction: "compute the key ratios"},
			{WorkerRole: "summarize", Instruction: "summarize the findings"},
		},
	}
}

func executingRecorder(t *testing.T, plan Plan) *Recorder {
	t.Helper()
	rec := NewRecorder("analyze company X", "")
	require.NoError(t, rec.BeginPlanning())
	require.NoError(t, rec.AttachPlan(plan))
	return rec
}

func TestNewRecorder_AssignsTraceID(t *testing.T) {
	rec := NewRecorder("analyze company X", "")
	assert.False(t, rec.TraceID().IsZero())
	assert.Equal(t, RunStatusPending, rec.Status())

	explicit := types.NewID()
	rec2 := NewRecorder("analyze company X", explicit)
	assert.Equal(t, explicit, rec2.TraceID())
}

func TestRecorder_Lifecycle(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())
	assert.Equal(t, RunStatusExecuting, rec.Status())

	for i, st := range rec.Plan().Subtasks {
		require.NoError(t, rec.AppendResult(WorkerResult{
			SubtaskIndex: i,
			WorkerRole:   st.WorkerRole,
			Output:       "done",
		}))
	}

	require.NoError(t, rec.BeginReporting())
	require.NoError(t, rec.Finalize("final report"))

	assert.Equal(t, RunStatusDone, rec.Status())
	assert.Equal(t, "final report", rec.FinalOutput())
	require.NotNil(t, rec.CompletedAt())
}

func TestRecorder_AttachPlan_Twice(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())

	err := rec.AttachPlan(threeStepPlan())
	require.Error(t, err)
	assert.Equal(t, types.RECORDER_INVALID_TRANSITION, types.ErrorCodeOf(err))
}

func TestRecorder_AttachPlan_BeforePlanning(t *testing.T) {
	rec := NewRecorder("analyze company X", "")

	err := rec.AttachPlan(threeStepPlan())
	require.Error(t, err)
	assert.Equal(t, types.RECORDER_INVALID_TRANSITION, types.ErrorCodeOf(err))
}

func TestRecorder_AppendResult_InOrder(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())

	require.NoError(t, rec.AppendResult(WorkerResult{SubtaskIndex: 0, WorkerRole: "fetch", Output: "data"}))
	require.NoError(t, rec.AppendResult(WorkerResult{SubtaskIndex: 1, WorkerRole: "compute", Output: "ratios"}))

	results := rec.Results()
	require.Len(t, results, 2)
	for i, res := range results {
		assert.Equal(t, i, res.SubtaskIndex)
	}

	plan := rec.Plan()
	assert.True(t, plan.Subtasks[0].Completed)
	assert.True(t, plan.Subtasks[1].Completed)
	assert.False(t, plan.Subtasks[2].Completed)
}

func TestRecorder_AppendResult_OutOfOrder(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{"gap", 1},
		{"far ahead", 5},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := executingRecorder(t, threeStepPlan())
			err := rec.AppendResult(WorkerResult{SubtaskIndex: tt.index, WorkerRole: "fetch"})
			require.Error(t, err)
			assert.Equal(t, types.RECORDER_OUT_OF_ORDER_RESULT, types.ErrorCodeOf(err))
		})
	}
}

func TestRecorder_AppendResult_Duplicate(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())
	require.NoError(t, rec.AppendResult(WorkerResult{SubtaskIndex: 0, WorkerRole: "fetch"}))

	err := rec.AppendResult(WorkerResult{SubtaskIndex: 0, WorkerRole: "fetch"})
	require.Error(t, err)
	assert.Equal(t, types.RECORDER_OUT_OF_ORDER_RESULT, types.ErrorCodeOf(err))
}

func TestRecorder_AppendResult_OutOfOrderWinsOverState(t *testing.T) {
	// The strict-append invariant is checked before the state check, so
	// an out-of-order append is reported as such even on a recorder that
	// is not executing.
	rec := NewRecorder("analyze company X", "")

	err := rec.AppendResult(WorkerResult{SubtaskIndex: 3, WorkerRole: "fetch"})
	require.Error(t, err)
	assert.Equal(t, types.RECORDER_OUT_OF_ORDER_RESULT, types.ErrorCodeOf(err))

	// An append with a matching index still fails, but as a transition error.
	err = rec.AppendResult(WorkerResult{SubtaskIndex: 0, WorkerRole: "fetch"})
	require.Error(t, err)
	assert.Equal(t, types.RECORDER_INVALID_TRANSITION, types.ErrorCodeOf(err))
}

func TestRecorder_AppendResult_BeyondPlan(t *testing.T) {
	rec := executingRecorder(t, Plan{Subtasks: []Subtask{{WorkerRole: "fetch", Instruction: "x"}}})
	require.NoError(t, rec.AppendResult(WorkerResult{SubtaskIndex: 0, WorkerRole: "fetch"}))

	err := rec.AppendResult(WorkerResult{SubtaskIndex: 1, WorkerRole: "fetch"})
	require.Error(t, err)
	assert.Equal(t, types.RECORDER_OUT_OF_ORDER_RESULT, types.ErrorCodeOf(err))
}

func TestRecorder_BeginReporting_RequiresAllResults(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())
	require.NoError(t, rec.AppendResult(WorkerResult{SubtaskIndex: 0, WorkerRole: "fetch"}))

	err := rec.BeginReporting()
	require.Error(t, err)
	assert.Equal(t, types.RECORDER_INVALID_TRANSITION, types.ErrorCodeOf(err))
}

func TestRecorder_EmptyPlan_ProceedsToReporting(t *testing.T) {
	rec := executingRecorder(t, Plan{Analysis: "nothing to do"})

	require.NoError(t, rec.BeginReporting())
	require.NoError(t, rec.Finalize("nothing needed doing"))
	assert.Equal(t, RunStatusDone, rec.Status())
}

func TestRecorder_FailedSubtaskStillRecorded(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())

	failure := types.NewError(types.EXEC_SUBTASK_FAILED, "worker blew up").
		WithContext("attempt", "3")
	require.NoError(t, rec.AppendResult(WorkerResult{
		SubtaskIndex: 0,
		WorkerRole:   "fetch",
		Error:        ErrorInfoFrom(failure),
		Attempts:     3,
	}))

	results := rec.Results()
	require.Len(t, results, 1)
	require.True(t, results[0].Failed())
	assert.Equal(t, types.EXEC_SUBTASK_FAILED, results[0].Error.Kind)
	assert.Equal(t, "3", results[0].Error.Context["attempt"])
	assert.True(t, rec.Plan().Subtasks[0].Completed)
}

func TestRecorder_Abort(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())

	cause := types.NewError(types.RUN_CANCELLED, "run cancelled by caller")
	require.NoError(t, rec.Abort(cause))

	assert.Equal(t, RunStatusFailed, rec.Status())
	require.NotNil(t, rec.Failure())
	assert.Equal(t, types.RUN_CANCELLED, rec.Failure().Kind)
	require.NotNil(t, rec.CompletedAt())
}

func TestRecorder_Abort_FromAnyNonTerminalState(t *testing.T) {
	for _, setup := range []func(t *testing.T) *Recorder{
		func(t *testing.T) *Recorder { return NewRecorder("x", "") },
		func(t *testing.T) *Recorder {
			rec := NewRecorder("x", "")
			require.NoError(t, rec.BeginPlanning())
			return rec
		},
		func(t *testing.T) *Recorder { return executingRecorder(t, threeStepPlan()) },
	} {
		rec := setup(t)
		require.NoError(t, rec.Abort(errors.New("boom")))
		assert.Equal(t, RunStatusFailed, rec.Status())
	}
}

func TestRecorder_TerminalIsImmutable(t *testing.T) {
	rec := executingRecorder(t, Plan{})
	require.NoError(t, rec.BeginReporting())
	require.NoError(t, rec.Finalize("done"))

	assert.Error(t, rec.Abort(errors.New("too late")))
	assert.Error(t, rec.BeginPlanning())
	assert.Error(t, rec.Finalize("again"))
}

func TestRecorder_Summary(t *testing.T) {
	rec := executingRecorder(t, threeStepPlan())
	require.NoError(t, rec.AppendResult(WorkerResult{SubtaskIndex: 0, WorkerRole: "fetch", Output: "ok", Duration: time.Second}))
	require.NoError(t, rec.AppendResult(WorkerResult{
		SubtaskIndex: 1,
		WorkerRole:   "compute",
		Error:        &ErrorInfo{Kind: types.EXEC_SUBTASK_FAILED, Message: "failed"},
	}))

	s := rec.Summary()
	assert.Equal(t, 3, s.Subtasks)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, RunStatusExecuting, s.Status)
	assert.False(t, s.FinalOutput)
}

func TestErrorInfoFrom(t *testing.T) {
	assert.Nil(t, ErrorInfoFrom(nil))

	plain := ErrorInfoFrom(errors.New("plain failure"))
	require.NotNil(t, plain)
	assert.Empty(t, plain.Kind)
	assert.Equal(t, "plain failure", plain.Message)

	orch := ErrorInfoFrom(types.NewError(types.BRAIN_TIMEOUT, "deadline").WithContext("phase", "planning"))
	require.NotNil(t, orch)
	assert.Equal(t, types.BRAIN_TIMEOUT, orch.Kind)
	assert.Equal(t, "planning", orch.Context["phase"])
}
