package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-ai/orchestra/internal/brain"
	"github.com/orchestra-ai/orchestra/internal/types"
)

func TestBrainWorkerInvoke(t *testing.T) {
	mock := brain.NewMock("the answer is 42")
	w := NewBrainWorker("analyst", "You are a careful analyst.", mock)
	assert.Equal(t, "analyst", w.Role())

	out, err := w.Invoke(context.Background(), Input{
		Request:       "answer the question",
		Instruction:   "compute the answer",
		ContextDigest: "## Task 1 (searcher)\nfound the question",
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer is 42", out.Text)
	require.NotEmpty(t, out.Trajectory)
	assert.Equal(t, "compose_prompt", out.Trajectory[0].Name)

	prompts := mock.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "You are a careful analyst.")
	assert.Contains(t, prompts[0], "# Overall request\nanswer the question")
	assert.Contains(t, prompts[0], "found the question")
	assert.Contains(t, prompts[0], "# Your task\ncompute the answer")
}

func TestBrainWorkerOmitsEmptySections(t *testing.T) {
	mock := brain.NewMock("ok")
	w := NewBrainWorker("searcher", "", mock)

	_, err := w.Invoke(context.Background(), Input{
		Request:     "do the thing",
		Instruction: "step one",
	})
	require.NoError(t, err)

	prompt := mock.Prompts()[0]
	assert.NotContains(t, prompt, "Results from earlier tasks")
	assert.True(t, len(prompt) > 0)
}

func TestBrainWorkerTranslatesErrors(t *testing.T) {
	mock := brain.NewMock()
	mock.QueueError(errors.New("rate limit exceeded"))
	w := NewBrainWorker("analyst", "", mock)

	_, err := w.Invoke(context.Background(), Input{Request: "r", Instruction: "i"})
	require.Error(t, err)
	assert.Equal(t, types.BRAIN_RATE_LIMITED, types.ErrorCodeOf(err))
	assert.True(t, types.IsRetryable(err))
}
