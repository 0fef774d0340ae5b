package sim

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Job is one independent run of a batch. Build is called inside the
// worker goroutine so that no stepper is shared between runs.
type Job struct {
	Name   string
	Build  func() (*Simulator, dynamo.State, error)
	Config Config
}

type Outcome struct {
	Name   string
	Result *Result
	Err    error
}

// RunBatch runs jobs concurrently, at most limit at a time (unbounded when
// limit <= 0). Failures are reported per job; only cancellation of ctx
// aborts the batch.
func RunBatch(ctx context.Context, jobs []Job, limit int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i].Name = job.Name

			s, x0, err := job.Build()
			if err != nil {
				outcomes[i].Err = err
				return nil
			}

			outcomes[i].Result, outcomes[i].Err = s.Run(ctx, x0, job.Config)
			if errors.Is(outcomes[i].Err, context.Canceled) || errors.Is(outcomes[i].Err, context.DeadlineExceeded) {
				return outcomes[i].Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
