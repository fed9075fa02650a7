// Package orchestrator drives the plan, execute, report pipeline for a
// single request. It owns the planner, the worker registry, and the
// reporter, and exposes a blocking mode, a streaming mode, and a batch
// helper over the same state machine.
package orchestrator

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/orchestra-ai/orchestra/internal/brain"
	"github.com/orchestra-ai/orchestra/internal/events"
	"github.com/orchestra-ai/orchestra/internal/task"
	"github.com/orchestra-ai/orchestra/internal/types"
	"github.com/orchestra-ai/orchestra/internal/worker"
)

// PlanCreator produces the execution plan for a request. The planner
// package provides the standard implementation.
type PlanCreator interface {
	CreatePlan(ctx context.Context, request, traceID string) (task.Plan, error)
}

// ReportWriter synthesizes the final output from a completed record.
// The reporter package provides the standard implementation.
type ReportWriter interface {
	Report(ctx context.Context, rec *task.Recorder) (string, error)
}

// Orchestrator runs the full pipeline. One Orchestrator serves many
// concurrent runs; all per-run state lives in each run's Recorder.
type Orchestrator struct {
	planner     PlanCreator
	registry    *worker.Registry
	reporter    ReportWriter
	bus         events.Bus
	logger      *slog.Logger
	policy      brain.RetryPolicy
	failFast    bool
	digestLimit int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEventBus installs the event bus all runs publish to. Default is a
// fresh bus owned by the orchestrator.
func WithEventBus(bus events.Bus) Option {
	return func(o *Orchestrator) {
		if bus != nil {
			o.bus = bus
		}
	}
}

// WithLogger sets the logger. Default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkerRetryPolicy sets the retry and per-call timeout policy for
// worker invocations.
func WithWorkerRetryPolicy(policy brain.RetryPolicy) Option {
	return func(o *Orchestrator) { o.policy = policy }
}

// WithAbortOnFirstFailure switches the failure policy: when set, the
// first failed subtask aborts the run without invoking the reporter.
// Default is to continue and let the reporter account for the gaps.
func WithAbortOnFirstFailure(abort bool) Option {
	return func(o *Orchestrator) { o.failFast = abort }
}

// WithDigestLimit bounds the per-output size in context digests.
func WithDigestLimit(limit int) Option {
	return func(o *Orchestrator) {
		if limit > 0 {
			o.digestLimit = limit
		}
	}
}

// New builds an Orchestrator. The registry is frozen here: the role set
// is closed for mutation once the orchestrator exists.
func New(p PlanCreator, registry *worker.Registry, r ReportWriter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner:     p,
		registry:    registry,
		reporter:    r,
		logger:      slog.Default(),
		policy:      brain.DefaultRetryPolicy(),
		digestLimit: worker.DefaultDigestLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.bus == nil {
		o.bus = events.NewBus()
	}
	registry.Freeze()
	return o
}

// Bus returns the event bus runs publish to, for external subscribers.
func (o *Orchestrator) Bus() events.Bus { return o.bus }

// Run executes the full pipeline and blocks until the run reaches a
// terminal state. The returned Recorder is always non-nil; on error its
// status is Failed and its Failure describes the phase that sank it.
func (o *Orchestrator) Run(ctx context.Context, request string) (*task.Recorder, error) {
	return o.run(ctx, request, func(events.Event) {})
}

// emitFunc receives each run event after bus publication. Streaming
// mode uses it to feed the per-run channel.
type emitFunc func(events.Event)

// phaseFor maps an event to the run phase it belongs to. Events are
// stamped with their own phase rather than the recorder's status at
// emission time, which may already have moved on (plan.created fires
// after the transition into executing).
func phaseFor(t events.EventType) task.RunStatus {
	switch t {
	case events.EventPlanStarted, events.EventPlanCreated:
		return task.RunStatusPlanning
	case events.EventSubtaskStarted, events.EventSubtaskCompleted, events.EventSubtaskFailed:
		return task.RunStatusExecuting
	case events.EventReportStarted, events.EventReportCreated:
		return task.RunStatusReporting
	case events.EventRunCompleted:
		return task.RunStatusDone
	case events.EventRunFailed, events.EventRunCancelled:
		return task.RunStatusFailed
	default:
		return task.RunStatusPending
	}
}

func (o *Orchestrator) run(ctx context.Context, request string, forward emitFunc) (*task.Recorder, error) {
	rec := task.NewRecorder(request, types.NewID())
	logger := o.logger.With("trace_id", rec.TraceID().String())
	emit := func(ev events.Event) {
		ev.Timestamp = time.Now()
		ev.TraceID = rec.TraceID()
		ev.Phase = string(phaseFor(ev.Type))
		if err := o.bus.Publish(ctx, ev); err != nil {
			logger.Debug("event publish failed", "type", ev.Type, "error", err)
		}
		forward(ev)
	}

	logger.Info("run started", "request_bytes", len(request))
	emit(events.Event{Type: events.EventRunStarted})

	if err := o.plan(ctx, rec, emit); err != nil {
		return rec, o.fail(rec, emit, logger, err)
	}
	if err := o.execute(ctx, rec, emit, logger); err != nil {
		return rec, o.fail(rec, emit, logger, err)
	}
	if err := o.report(ctx, rec, emit); err != nil {
		return rec, o.fail(rec, emit, logger, err)
	}

	emit(events.Event{Type: events.EventRunCompleted, Duration: rec.Summary().Duration})
	logger.Info("run completed", "subtasks", len(rec.Results()))
	return rec, nil
}

func (o *Orchestrator) plan(ctx context.Context, rec *task.Recorder, emit emitFunc) error {
	if err := rec.BeginPlanning(); err != nil {
		return err
	}
	emit(events.Event{Type: events.EventPlanStarted})

	start := time.Now()
	plan, err := o.planner.CreatePlan(ctx, rec.Request(), rec.TraceID().String())
	if err != nil {
		return err
	}
	if err := rec.AttachPlan(plan); err != nil {
		return err
	}

	emit(events.Event{
		Type:     events.EventPlanCreated,
		Duration: time.Since(start),
		Attrs: map[string]any{
			"subtasks": len(plan.Subtasks),
			"roles":    plan.Roles(),
		},
	})
	return nil
}

// execute iterates subtasks strictly in plan order. Cancellation is
// checked before every dispatch; an in-flight worker call is not
// preempted beyond what its context does, but no further subtask starts
// after cancellation.
func (o *Orchestrator) execute(ctx context.Context, rec *task.Recorder, emit emitFunc, logger *slog.Logger) error {
	plan := rec.Plan()
	if plan == nil || plan.IsEmpty() {
		return nil
	}

	for i, st := range plan.Subtasks {
		if err := ctx.Err(); err != nil {
			return types.WrapError(types.RUN_CANCELLED,
				"run cancelled before subtask dispatch", err).
				WithContext("subtask_index", strconv.Itoa(i))
		}

		emit(events.Event{
			Type:         events.EventSubtaskStarted,
			Role:         st.WorkerRole,
			SubtaskIndex: i,
		})

		result := o.dispatch(ctx, rec, i, st)
		if err := rec.AppendResult(result); err != nil {
			// Invariant violation; fatal.
			return err
		}

		if result.Failed() {
			emit(events.Event{
				Type:         events.EventSubtaskFailed,
				Role:         st.WorkerRole,
				SubtaskIndex: i,
				Duration:     result.Duration,
				Error:        result.Error.Message,
			})
			logger.Warn("subtask failed",
				"subtask_index", i,
				"role", st.WorkerRole,
				"attempts", result.Attempts,
				"error", result.Error.Message)

			// A cancellation that surfaced through the worker call is
			// still a cancellation; the failure policy must not
			// reclassify it.
			if result.Error.Kind == types.RUN_CANCELLED || ctx.Err() != nil {
				return types.WrapError(types.RUN_CANCELLED,
					"run cancelled during subtask", ctx.Err()).
					WithContext("subtask_index", strconv.Itoa(i)).
					WithContext("role", st.WorkerRole)
			}

			if o.failFast {
				return types.NewError(types.EXEC_ABORTED,
					"subtask failed with abort-on-first-failure set").
					WithContext("subtask_index", strconv.Itoa(i)).
					WithContext("role", st.WorkerRole)
			}
			continue
		}

		emit(events.Event{
			Type:         events.EventSubtaskCompleted,
			Role:         st.WorkerRole,
			SubtaskIndex: i,
			Duration:     result.Duration,
		})
		logger.Info("subtask completed",
			"subtask_index", i,
			"role", st.WorkerRole,
			"attempts", result.Attempts,
			"duration", result.Duration)
	}
	return nil
}

func (o *Orchestrator) report(ctx context.Context, rec *task.Recorder, emit emitFunc) error {
	if err := ctx.Err(); err != nil {
		return types.WrapError(types.RUN_CANCELLED,
			"run cancelled before reporting", err)
	}

	if err := rec.BeginReporting(); err != nil {
		return err
	}
	emit(events.Event{Type: events.EventReportStarted})

	start := time.Now()
	output, err := o.reporter.Report(ctx, rec)
	if err != nil {
		return err
	}
	if err := rec.Finalize(output); err != nil {
		return err
	}

	emit(events.Event{Type: events.EventReportCreated, Duration: time.Since(start)})
	return nil
}

// fail moves the run to Failed and emits the terminal event. The
// original error is returned so the caller sees the phase that failed.
func (o *Orchestrator) fail(rec *task.Recorder, emit emitFunc, logger *slog.Logger, cause error) error {
	if err := rec.Abort(cause); err != nil {
		logger.Error("abort failed", "error", err, "cause", cause)
	}

	evType := events.EventRunFailed
	if types.ErrorCodeOf(cause) == types.RUN_CANCELLED {
		evType = events.EventRunCancelled
	}
	emit(events.Event{Type: evType, Error: cause.Error()})
	logger.Error("run failed", "error", cause)
	return cause
}
