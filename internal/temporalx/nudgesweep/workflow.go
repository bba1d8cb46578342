package nudgesweep

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	defaultInterval   = time.Minute
	defaultMaxSweeps  = 500
	historyLimit      = 10000
	sweepTimeoutFloor = time.Minute
)

// Workflow runs one sweep activity per interval forever, continuing as new
// before the history grows too large. A failed sweep is logged and the next
// one runs on schedule.
func Workflow(ctx workflow.Context, in Input) error {
	if in.Interval <= 0 {
		in.Interval = defaultInterval
	}
	maxSweeps := in.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = defaultMaxSweeps
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: max(in.Interval, sweepTimeoutFloor),
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	log := workflow.GetLogger(ctx)

	for sweeps := 1; ; sweeps++ {
		var out Result
		if err := workflow.ExecuteActivity(ctx, ActivitySweep).Get(ctx, &out); err != nil {
			log.Warn("nudge sweep failed", "sweep", sweeps, "error", err)
		} else if out.Fired > 0 || out.Failed > 0 {
			log.Info("nudge sweep done", "users", out.Users, "fired", out.Fired, "failed", out.Failed)
		}

		if err := workflow.Sleep(ctx, in.Interval); err != nil {
			return err
		}
		if sweeps >= maxSweeps || workflow.GetInfo(ctx).GetCurrentHistoryLength() >= historyLimit {
			return workflow.NewContinueAsNewError(ctx, WorkflowName, in)
		}
	}
}
