package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/orchestra-ai/orchestra/internal/task"
)

// RunBatch executes independent requests concurrently, at most parallel
// at a time (0 means no limit). Each request gets its own Recorder, so
// runs share nothing but the worker and brain handles, which are safe
// for concurrent use.
//
// One failed run does not cancel its siblings; recorders come back in
// request order and the returned error is the first failure observed.
// Callers wanting per-run outcomes inspect each recorder's status.
func (o *Orchestrator) RunBatch(ctx context.Context, requests []string, parallel int) ([]*task.Recorder, error) {
	recorders := make([]*task.Recorder, len(requests))
	var g errgroup.Group
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, request := range requests {
		i, request := i, request
		g.Go(func() error {
			rec, err := o.Run(ctx, request)
			recorders[i] = rec
			return err
		})
	}

	err := g.Wait()
	return recorders, err
}
