package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-ai/orchestra/internal/types"
)

const wellFormedResponse = `<analysis>
The request needs data before analysis, so fetch first.
</analysis>

<plan>
[
  {"agent_name": "fetch", "task": "retrieve the raw records"},
  {"agent_name": "compute", "task": "derive the key figures"},
  {"agent_name": "summarize", "task": "write the findings up"}
]
</plan>`

func TestParseResponse_WellFormed(t *testing.T) {
	plan, err := parseResponse(wellFormedResponse)
	require.NoError(t, err)
	assert.Equal(t, "The request needs data before analysis, so fetch first.", plan.Analysis)
	require.Len(t, plan.Subtasks, 3)
	assert.Equal(t, "fetch", plan.Subtasks[0].WorkerRole)
	assert.Equal(t, "retrieve the raw records", plan.Subtasks[0].Instruction)
	assert.False(t, plan.Subtasks[0].Completed)
	assert.Equal(t, "summarize", plan.Subtasks[2].WorkerRole)
}

func TestParseResponse_MissingAnalysisTolerated(t *testing.T) {
	plan, err := parseResponse(`<plan>[{"agent_name": "fetch", "task": "get data"}]</plan>`)
	require.NoError(t, err)
	assert.Empty(t, plan.Analysis)
	require.Len(t, plan.Subtasks, 1)
}

func TestParseResponse_EmptyPlanListIsValid(t *testing.T) {
	plan, err := parseResponse(`<analysis>nothing to do</analysis><plan>[]</plan>`)
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestParseResponse_FencedPlanBody(t *testing.T) {
	response := "<plan>\n```json\n[{\"agent_name\": \"fetch\", \"task\": \"get data\"}]\n```\n</plan>"
	plan, err := parseResponse(response)
	require.NoError(t, err)
	require.Len(t, plan.Subtasks, 1)
	assert.Equal(t, "fetch", plan.Subtasks[0].WorkerRole)
}

func TestParseResponse_UntaggedJSONListAccepted(t *testing.T) {
	response := "Here is the plan:\n[{\"agent_name\": \"fetch\", \"task\": \"get data\"}]"
	plan, err := parseResponse(response)
	require.NoError(t, err)
	require.Len(t, plan.Subtasks, 1)
}

func TestParseResponse_Failures(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"empty response", "   "},
		{"no plan anywhere", "I could not produce a plan."},
		{"plan not a list", `<plan>{"agent_name": "fetch", "task": "x"}</plan>`},
		{"invalid json", `<plan>[{"agent_name": "fetch",]</plan>`},
		{"missing agent_name", `<plan>[{"task": "get data"}]</plan>`},
		{"missing task", `<plan>[{"agent_name": "fetch"}]</plan>`},
		{"untagged json is an object", `{"agent_name": "fetch", "task": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(tt.response)
			require.Error(t, err)
			assert.Equal(t, types.PLANNING_PARSE_FAILED, types.ErrorCodeOf(err))
			assert.True(t, types.IsRetryable(err))
		})
	}
}
