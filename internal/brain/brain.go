// Package brain abstracts the reasoning backends that the orchestration
// core delegates to. A Brain is an opaque request/response collaborator:
// it accepts a prompt and returns text within a timeout. The planner,
// every worker, and the reporter each hold one. The orchestration engine
// has no dependency on what sits behind the interface; the providers
// subpackage supplies LLM-backed implementations and tests use mocks.
package brain

import "context"

// Brain is a single reasoning capability handle. Implementations must
// be safe for concurrent invocation: one handle may serve many
// independent runs, and must hold no per-run state.
type Brain interface {
	// Name identifies the backend, for logging and error context.
	Name() string

	// Invoke sends the prompt and blocks until the backend responds,
	// the context is cancelled, or the context deadline passes.
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to the Brain interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Name implements Brain.
func (f Func) Name() string { return "func" }

// Invoke implements Brain.
func (f Func) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
