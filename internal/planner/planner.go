// Package planner turns a free-form request into an ordered execution
// plan by invoking a planning brain and parsing its delimited response.
package planner

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/orchestra-ai/orchestra/internal/brain"
	"github.com/orchestra-ai/orchestra/internal/task"
	"github.com/orchestra-ai/orchestra/internal/types"
)

// RoleSource answers which worker roles exist. The worker registry
// satisfies it.
type RoleSource interface {
	Has(role string) bool
	Roles() []string
}

// Planner produces plans for the orchestrator. Safe for concurrent use
// across runs; it holds no per-run state.
type Planner struct {
	brain     brain.Brain
	roles     RoleSource
	retriever ExampleRetriever
	policy    brain.RetryPolicy
	logger    *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithExampleRetriever installs a worked-example source. Default is no
// examples.
func WithExampleRetriever(r ExampleRetriever) Option {
	return func(p *Planner) {
		if r != nil {
			p.retriever = r
		}
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy brain.RetryPolicy) Option {
	return func(p *Planner) { p.policy = policy }
}

// WithLogger sets the logger. Default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Planner over the given brain and role source.
func New(b brain.Brain, roles RoleSource, opts ...Option) *Planner {
	p := &Planner{
		brain:     b,
		roles:     roles,
		retriever: NoExamples{},
		policy:    brain.DefaultRetryPolicy(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreatePlan invokes the planning brain and parses its response into a
// Plan. Transport failures retry with the same prompt; parse failures
// retry with a clarifying re-prompt rather than silently defaulting to
// an empty plan. A plan naming a worker role that is not registered is
// terminal and never retried.
func (p *Planner) CreatePlan(ctx context.Context, request, traceID string) (task.Plan, error) {
	logger := p.logger.With("trace_id", traceID, "component", "planner")

	example, err := p.retriever.Lookup(ctx, request)
	if err != nil {
		// A broken example library should not sink the run.
		logger.Warn("example lookup failed, planning without example", "error", err)
		example = ""
	}

	basePrompt := buildPrompt(request, p.roles.Roles(), example)
	prompt := basePrompt
	attempts := p.policy.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		response, err := brain.InvokeOnce(ctx, p.brain, prompt, p.policy.CallTimeout)
		if err != nil {
			if !types.IsRetryable(err) {
				return task.Plan{}, err
			}
			logger.Warn("planning brain call failed",
				"attempt", attempt, "error", err)
			lastErr = err
			if werr := p.waitBeforeRetry(ctx, attempt, attempts); werr != nil {
				return task.Plan{}, werr
			}
			continue
		}

		plan, perr := parseResponse(response)
		if perr != nil {
			logger.Warn("planning response unparseable",
				"attempt", attempt, "error", perr)
			lastErr = perr
			prompt = basePrompt + "\n\n" + clarifyInstruction
			if werr := p.waitBeforeRetry(ctx, attempt, attempts); werr != nil {
				return task.Plan{}, werr
			}
			continue
		}

		if verr := p.validateRoles(plan); verr != nil {
			return task.Plan{}, verr
		}

		logger.Info("plan created",
			"subtasks", len(plan.Subtasks),
			"roles", plan.Roles(),
			"attempt", attempt)
		return plan, nil
	}

	return task.Plan{}, types.WrapError(types.PLANNING_RETRIES_EXHAUSTED,
		"planning failed after exhausting retries", lastErr).
		WithContext("attempts", strconv.Itoa(attempts))
}

func (p *Planner) waitBeforeRetry(ctx context.Context, attempt, attempts int) error {
	if attempt == attempts {
		return nil
	}
	return p.policy.Wait(ctx, attempt)
}

// validateRoles rejects any plan naming an unregistered worker. This is
// surfaced as a terminal planning failure rather than retried: the
// brain already saw the role list, so a made-up role is a model error a
// re-prompt is unlikely to fix, and guessing a substitute worker would
// be worse.
func (p *Planner) validateRoles(plan task.Plan) error {
	for i, st := range plan.Subtasks {
		if !p.roles.Has(st.WorkerRole) {
			return types.NewError(types.PLANNING_UNKNOWN_WORKER,
				"plan references unknown worker role").
				WithContext("role", st.WorkerRole).
				WithContext("subtask_index", strconv.Itoa(i))
		}
	}
	return nil
}
