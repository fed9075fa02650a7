// Package worker defines the worker capability contract and the
// registry that binds role names to worker implementations. A worker is
// the narrow interface through which all domain-specific behavior is
// invoked: the orchestration core hands it a request, an instruction,
// and a digest of prior outputs, and receives text plus an opaque
// trajectory back.
package worker

import (
	"context"

	"github.com/orchestra-ai/orchestra/internal/task"
	"github.com/orchestra-ai/orchestra/internal/types"
)

// Input is everything a worker sees for one subtask.
type Input struct {
	// Request is the original free-form request for the whole run.
	Request string

	// Instruction is this subtask's instruction from the plan.
	Instruction string

	// ContextDigest is the compressed summary of all prior subtask
	// outputs, in plan order. It never includes trajectories; only
	// final outputs propagate forward.
	ContextDigest string

	// TraceID correlates the invocation with its run.
	TraceID types.ID
}

// Output is what a worker produces for one subtask.
type Output struct {
	// Text is the worker's final output, which feeds later subtasks'
	// context digests and the final report.
	Text string

	// Trajectory records the worker's internal steps. Opaque to the
	// orchestrator; kept for diagnosis only.
	Trajectory []task.Step
}

// Worker is a single named capability. Implementations must be safe
// for concurrent invocation across independent runs and hold no
// per-run state.
type Worker interface {
	// Role returns the role name this worker serves.
	Role() string

	// Invoke executes one subtask. It blocks until the work completes,
	// the context is cancelled, or the context deadline passes.
	Invoke(ctx context.Context, input Input) (Output, error)
}
