package nudgesweep

import "time"

const (
	WorkflowName  = "nudge_sweep"
	ActivitySweep = "nudge_sweep_run"

	// WorkflowID is fixed so only one sweep loop runs per namespace.
	WorkflowID = "nudge-sweep"
)

type Input struct {
	Interval time.Duration `json:"interval"`
	// MaxSweeps bounds one run before it continues as new; 0 uses the default.
	MaxSweeps int `json:"max_sweeps,omitempty"`
}

type Result struct {
	Users  int `json:"users"`
	Fired  int `json:"fired"`
	Failed int `json:"failed"`
}
