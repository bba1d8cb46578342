package temporalworker

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/temporalx"
	"github.com/yungbote/healthwhisperer-backend/internal/temporalx/nudgesweep"
)

// Runner hosts the nudge sweep workflow on a Temporal worker and makes sure
// the singleton sweep execution is running.
type Runner struct {
	log     *logger.Logger
	tc      temporalsdkclient.Client
	cfg     temporalx.Config
	sweeper nudgesweep.Sweeper
	in      nudgesweep.Input
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, sweeper nudgesweep.Sweeper, in nudgesweep.Input) (*Runner, error) {
	if tc == nil {
		return nil, errors.New("temporal client is not configured")
	}
	if sweeper == nil {
		return nil, errors.New("temporal worker missing sweeper")
	}
	return &Runner{
		log:     log.With("component", "TemporalWorker"),
		tc:      tc,
		cfg:     cfg,
		sweeper: sweeper,
		in:      in,
	}, nil
}

// Start begins polling the task queue and then starts the sweep workflow if
// it is not already running. The worker stops when ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     r.cfg.WorkerConcurrency,
		MaxConcurrentWorkflowTaskExecutionSize: r.cfg.WorkerConcurrency,
	})
	acts := &nudgesweep.Activities{Sweeper: r.sweeper}
	w.RegisterWorkflowWithOptions(nudgesweep.Workflow, workflow.RegisterOptions{Name: nudgesweep.WorkflowName})
	w.RegisterActivityWithOptions(acts.Sweep, activity.RegisterOptions{Name: nudgesweep.ActivitySweep})

	if err := w.Start(); err != nil {
		return fmt.Errorf("start temporal worker: %w", err)
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	r.log.Info("Temporal worker started", "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	return r.ensureSweep(ctx)
}

func (r *Runner) ensureSweep(ctx context.Context) error {
	in := r.in
	run, err := r.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                                       nudgesweep.WorkflowID,
		TaskQueue:                                r.cfg.TaskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, nudgesweep.WorkflowName, in)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	switch {
	case errors.As(err, &started):
		r.log.Info("Nudge sweep workflow already running", "workflow_id", nudgesweep.WorkflowID)
		return nil
	case err != nil:
		return fmt.Errorf("start nudge sweep workflow: %w", err)
	}
	r.log.Info("Nudge sweep workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "interval", in.Interval)
	return nil
}
