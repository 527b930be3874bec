package dag

import (
	"fmt"
	"strings"

	"surfgen/internal/core"
)

// TaskResult is the final outcome of one task identity within a run.
type TaskResult struct {
	ID        core.Identity
	State     State
	FromCache bool
	Documents int
	Location  string
	Err       error
}

// RunReport summarizes one resolver run. Results follow the graph order
// (dependencies before dependents), so a partially failed run reads
// top-to-bottom as "what is now cached" followed by "what must be redone".
type RunReport struct {
	RunID   string
	Results []TaskResult
}

// Result looks up the outcome for an identity.
func (r *RunReport) Result(id core.Identity) (TaskResult, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return TaskResult{}, false
}

// Succeeded returns the results whose records are now committed.
func (r *RunReport) Succeeded() []TaskResult {
	var out []TaskResult
	for _, res := range r.Results {
		if res.State == StateDone {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the results that failed, each with its cause.
func (r *RunReport) Failed() []TaskResult {
	var out []TaskResult
	for _, res := range r.Results {
		if res.State == StateFailed {
			out = append(out, res)
		}
	}
	return out
}

// Err aggregates every failure into one error, or returns nil when the run
// fully succeeded. Each failed identity is named with its cause.
func (r *RunReport) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d task(s) failed:", len(failed))
	for _, res := range failed {
		fmt.Fprintf(&b, "\n  %s: %v", res.ID, res.Err)
	}
	return fmt.Errorf("%s", b.String())
}
