package worker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orchestra-ai/orchestra/internal/task"
	"github.com/orchestra-ai/orchestra/internal/types"
)

func TestBuildDigestEmpty(t *testing.T) {
	assert.Equal(t, "", BuildDigest(nil, DefaultDigestLimit))
	assert.Equal(t, "", BuildDigest([]task.WorkerResult{}, DefaultDigestLimit))
}

func TestBuildDigestNumbersSections(t *testing.T) {
	results := []task.WorkerResult{
		{SubtaskIndex: 0, WorkerRole: "searcher", Output: "found three sources"},
		{SubtaskIndex: 1, WorkerRole: "analyst", Output: "all sources agree"},
	}

	digest := BuildDigest(results, DefaultDigestLimit)
	assert.Contains(t, digest, "## Task 1 (searcher)")
	assert.Contains(t, digest, "found three sources")
	assert.Contains(t, digest, "## Task 2 (analyst)")
	assert.Contains(t, digest, "all sources agree")
	// Sections appear in order.
	assert.Less(t, strings.Index(digest, "Task 1"), strings.Index(digest, "Task 2"))
}

func TestBuildDigestMarksFailures(t *testing.T) {
	results := []task.WorkerResult{
		{SubtaskIndex: 0, WorkerRole: "searcher", Error: &task.ErrorInfo{
			Kind:    types.EXEC_SUBTASK_FAILED,
			Message: "upstream unavailable",
		}},
	}

	digest := BuildDigest(results, DefaultDigestLimit)
	assert.Contains(t, digest, "FAILED: upstream unavailable")
}

func TestBuildDigestTruncatesLongOutputs(t *testing.T) {
	long := strings.Repeat("x", 10000)
	results := []task.WorkerResult{
		{SubtaskIndex: 0, WorkerRole: "searcher", Output: long},
		{SubtaskIndex: 1, WorkerRole: "analyst", Output: "short"},
	}

	digest := BuildDigest(results, 500)
	assert.Contains(t, digest, truncationMarker)
	assert.Contains(t, digest, "short")
	assert.Less(t, len(digest), 1200)
}

func TestBuildDigestNeverIncludesTrajectory(t *testing.T) {
	results := []task.WorkerResult{
		{
			SubtaskIndex: 0,
			WorkerRole:   "searcher",
			Output:       "done",
			Trajectory: []task.Step{
				{Name: "secret_internal_step", Detail: "should not leak"},
			},
		},
	}

	digest := BuildDigest(results, DefaultDigestLimit)
	assert.NotContains(t, digest, "secret_internal_step")
	assert.NotContains(t, digest, "should not leak")
}
