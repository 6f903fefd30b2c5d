package reconcile

import (
	"context"

	"hostwire"
)

// ProbeFunc reads the current state of a resource. It must be free of
// side effects. A returned error means the probe itself could not run;
// the resource state is then Unknown, never Absent.
type ProbeFunc func(ctx context.Context) (hostwire.Observation, error)

// ApplyFunc performs one idempotent convergence action. It is only
// invoked when the probe reported Absent or Mismatch, and must be safe
// to re-invoke on an already-correct host.
type ApplyFunc func(ctx context.Context) error

// Step is one resource in a plan.
type Step struct {
	// Resource names the step for logs, the journal and the report.
	Resource string

	Probe ProbeFunc
	Apply ApplyFunc

	// Fallback is the single second-tier action attempted when Apply
	// fails or verification still reports divergence. At most one
	// fallback runs per step.
	Fallback ApplyFunc

	// Requires lists resources that must have converged (or been
	// tolerated as degraded) before this step runs. Unmet requirements
	// skip the step.
	Requires []string

	// Optional marks a resource whose failure degrades the run instead
	// of failing it.
	Optional bool

	// Fatal marks a prerequisite the rest of the run cannot do without.
	// Failure halts the run immediately; no later step executes.
	Fatal bool
}

// Result is the terminal record for one step.
type Result struct {
	Resource     string
	Phase        hostwire.Phase
	Observation  hostwire.Observation
	Err          error
	UsedFallback bool
}

// Report is the outcome of a full run.
type Report struct {
	Results []Result
}

// Ok reports whether every executed resource ended in an acceptable
// state. Skipped steps count as failures: their requirements did not
// converge.
func (r Report) Ok() bool {
	for _, res := range r.Results {
		if !res.Phase.Ok() {
			return false
		}
	}
	return len(r.Results) > 0
}

// Find returns the result for a resource, if present.
func (r Report) Find(resource string) (Result, bool) {
	for _, res := range r.Results {
		if res.Resource == resource {
			return res, true
		}
	}
	return Result{}, false
}
