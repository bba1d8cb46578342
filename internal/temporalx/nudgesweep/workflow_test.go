package nudgesweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/healthwhisperer-backend/internal/jobs/scheduler"
)

type countingSweeper struct {
	calls int
	fail  bool
}

func (c *countingSweeper) Sweep(ctx context.Context) (scheduler.SweepResult, error) {
	c.calls++
	if c.fail {
		return scheduler.SweepResult{}, errors.New("db down")
	}
	return scheduler.SweepResult{Users: 2, Fired: 1}, nil
}

func runWorkflow(t *testing.T, sw *countingSweeper, in Input) error {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	acts := &Activities{Sweeper: sw}
	env.RegisterActivityWithOptions(acts.Sweep, activity.RegisterOptions{Name: ActivitySweep})
	env.ExecuteWorkflow(WorkflowName, in)
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	return env.GetWorkflowError()
}

func TestWorkflowContinuesAsNew(t *testing.T) {
	sw := &countingSweeper{}
	err := runWorkflow(t, sw, Input{Interval: 30 * time.Second, MaxSweeps: 3})
	var can *workflow.ContinueAsNewError
	if !errors.As(err, &can) {
		t.Fatalf("expected continue-as-new, got %v", err)
	}
	if sw.calls != 3 {
		t.Fatalf("sweeps=%d", sw.calls)
	}
}

func TestWorkflowSurvivesFailedSweeps(t *testing.T) {
	sw := &countingSweeper{fail: true}
	err := runWorkflow(t, sw, Input{MaxSweeps: 2})
	var can *workflow.ContinueAsNewError
	if !errors.As(err, &can) {
		t.Fatalf("expected continue-as-new, got %v", err)
	}
	if sw.calls != 2 {
		t.Fatalf("sweeps=%d", sw.calls)
	}
}
