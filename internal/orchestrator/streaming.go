package orchestrator

import (
	"context"

	"github.com/orchestra-ai/orchestra/internal/events"
	"github.com/orchestra-ai/orchestra/internal/task"
)

// StreamingRun is one in-flight run with an ordered event stream. The
// stream is single-consumer and lazy: the pipeline does not race ahead
// of the reader by more than the channel buffer. A StreamingRun cannot
// be restarted; start a new run instead.
type StreamingRun struct {
	ch     chan events.Event
	cancel context.CancelFunc
	done   chan struct{}

	rec *task.Recorder
	err error
}

// streamBuffer lets the pipeline run a little ahead of a reader that
// is between receives, without unbounding memory.
const streamBuffer = 16

// Stream starts the pipeline in the background and returns immediately.
// Events arrive on Events() in emission order; Wait returns the final
// Recorder once the run reaches a terminal state.
func (o *Orchestrator) Stream(ctx context.Context, request string) *StreamingRun {
	runCtx, cancel := context.WithCancel(ctx)
	s := &StreamingRun{
		ch:     make(chan events.Event, streamBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// forward delivers one event to the consumer, blocking when the
	// buffer is full so the stream stays ordered and bounded. Delivery
	// is preferred when there is room; a cancelled run stops blocking
	// on a reader that went away.
	forward := func(ev events.Event) {
		select {
		case s.ch <- ev:
			return
		default:
		}
		select {
		case s.ch <- ev:
		case <-runCtx.Done():
		}
	}

	go func() {
		defer close(s.done)
		defer close(s.ch)
		s.rec, s.err = o.run(runCtx, request, forward)
	}()

	return s
}

// Events returns the ordered event stream. The channel closes when the
// run reaches a terminal state.
func (s *StreamingRun) Events() <-chan events.Event { return s.ch }

// Wait blocks until the run finishes and returns the final Recorder.
// The error mirrors what a blocking Run call would have returned.
func (s *StreamingRun) Wait() (*task.Recorder, error) {
	<-s.done
	return s.rec, s.err
}

// Cancel stops the run. No subtask dispatches after the cancellation is
// observed; the run transitions to Failed with a cancelled cause. Safe
// to call more than once.
func (s *StreamingRun) Cancel() { s.cancel() }
