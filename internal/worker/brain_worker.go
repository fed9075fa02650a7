package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/orchestra-ai/orchestra/internal/brain"
	"github.com/orchestra-ai/orchestra/internal/task"
)

// BrainWorker is a worker backed by a reasoning brain. It composes a
// role-specific prompt from the run request, the subtask instruction,
// and the context digest, then returns the brain's response verbatim as
// its output. This is the standard worker shape; domain-specific
// workers with their own logic implement the Worker interface directly.
type BrainWorker struct {
	role         string
	systemPrompt string
	brain        brain.Brain
}

// NewBrainWorker creates a worker for the given role. The system prompt
// frames the brain's specialty (for example "You are a data analyst...");
// it may be empty.
func NewBrainWorker(role, systemPrompt string, b brain.Brain) *BrainWorker {
	return &BrainWorker{
		role:         role,
		systemPrompt: systemPrompt,
		brain:        b,
	}
}

// Role implements Worker.
func (w *BrainWorker) Role() string { return w.role }

// Invoke implements Worker: one prompt composition, one brain call.
// Retry and timeout policy are applied by the dispatcher, not here.
func (w *BrainWorker) Invoke(ctx context.Context, input Input) (Output, error) {
	prompt := w.buildPrompt(input)

	trajectory := []task.Step{
		{Name: "compose_prompt", Detail: fmt.Sprintf("%d bytes", len(prompt))},
	}

	response, err := w.brain.Invoke(ctx, prompt)
	if err != nil {
		return Output{Trajectory: trajectory}, brain.TranslateError(w.brain.Name(), err)
	}

	trajectory = append(trajectory, task.Step{
		Name:   "brain_response",
		Detail: fmt.Sprintf("backend=%s bytes=%d", w.brain.Name(), len(response)),
	})

	return Output{Text: response, Trajectory: trajectory}, nil
}

func (w *BrainWorker) buildPrompt(input Input) string {
	var b strings.Builder

	if w.systemPrompt != "" {
		b.WriteString(w.systemPrompt)
		b.WriteString("\n\n")
	}

	b.WriteString("# Overall request\n")
	b.WriteString(input.Request)
	b.WriteString("\n\n")

	if input.ContextDigest != "" {
		b.WriteString("# Results from earlier tasks\n")
		b.WriteString(input.ContextDigest)
		b.WriteString("\n\n")
	}

	b.WriteString("# Your task\n")
	b.WriteString(input.Instruction)
	return b.String()
}

var _ Worker = (*BrainWorker)(nil)
