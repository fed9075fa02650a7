// Package reporter synthesizes the final output of a run from the full
// execution record.
package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/orchestra-ai/orchestra/internal/brain"
	"github.com/orchestra-ai/orchestra/internal/task"
	"github.com/orchestra-ai/orchestra/internal/types"
)

const reporterSystemPrompt = `You are a reporting assistant. Synthesize a single coherent report
answering the original request from the task results below. Results are
in execution order; later tasks built on earlier ones. Some tasks may
have failed: account for those gaps explicitly rather than papering
over them. Do not invent results that are not in the record.`

// Reporter produces the final synthesized output. Safe for concurrent
// use across runs.
type Reporter struct {
	brain  brain.Brain
	policy brain.RetryPolicy
	logger *slog.Logger
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy brain.RetryPolicy) Option {
	return func(r *Reporter) { r.policy = policy }
}

// WithLogger sets the logger. Default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Reporter over the given brain.
func New(b brain.Brain, opts ...Option) *Reporter {
	r := &Reporter{
		brain:  b,
		policy: brain.DefaultRetryPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report invokes the reporting brain over the complete record: the
// request, the plan's analysis, and every worker result in order,
// including failed ones. Transient failures are retried per the policy;
// exhaustion or a non-retryable failure aborts the run, since a silent
// partial report would be indistinguishable from success.
func (r *Reporter) Report(ctx context.Context, rec *task.Recorder) (string, error) {
	logger := r.logger.With("trace_id", rec.TraceID().String(), "component", "reporter")

	prompt := buildReportPrompt(rec)
	logger.Info("report started", "results", len(rec.Results()))

	output, err := brain.Invoke(ctx, r.brain, prompt, r.policy)
	if err != nil {
		if types.ErrorCodeOf(err) == types.RUN_CANCELLED {
			return "", err
		}
		return "", types.WrapError(types.REPORTING_FAILED,
			"reporting brain failed", err)
	}

	logger.Info("report created", "bytes", len(output))
	return output, nil
}

// buildReportPrompt lays out the full record for the reporting brain.
// Worker outputs go in untruncated; unlike the per-subtask context
// digest, the report is the one place that sees everything.
func buildReportPrompt(rec *task.Recorder) string {
	var b strings.Builder
	b.WriteString(reporterSystemPrompt)

	b.WriteString("\n\n# Original request\n")
	b.WriteString(rec.Request())

	if plan := rec.Plan(); plan != nil && plan.Analysis != "" {
		b.WriteString("\n\n# Planning analysis\n")
		b.WriteString(plan.Analysis)
	}

	b.WriteString("\n\n# Task results\n")
	results := rec.Results()
	if len(results) == 0 {
		b.WriteString("No tasks were executed; the plan was empty.\n")
	}
	for _, res := range results {
		fmt.Fprintf(&b, "\n## Task %d (%s)\n", res.SubtaskIndex+1, res.WorkerRole)
		if res.Failed() {
			fmt.Fprintf(&b, "FAILED after %d attempt(s): %s\n", res.Attempts, res.Error.Message)
			continue
		}
		b.WriteString(res.Output)
		b.WriteString("\n")
	}

	b.WriteString("\nWrite the final report now.")
	return b.String()
}
