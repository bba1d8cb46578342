package nudgesweep

import (
	"context"

	"github.com/yungbote/healthwhisperer-backend/internal/jobs/scheduler"
)

// Sweeper is implemented by *scheduler.Scheduler.
type Sweeper interface {
	Sweep(ctx context.Context) (scheduler.SweepResult, error)
}

type Activities struct {
	Sweeper Sweeper
}

func (a *Activities) Sweep(ctx context.Context) (Result, error) {
	res, err := a.Sweeper.Sweep(ctx)
	return Result(res), err
}
