// Package hostwire defines the shared vocabulary of the provisioner:
// probe observations, per-resource lifecycle phases, and the failure
// taxonomy used by the reconciliation engine.
package hostwire

// State is the tri-state outcome of probing a resource, plus Unknown
// for the case where probing itself failed. Unknown is never treated
// as Absent: a broken probe must surface, not trigger an install.
type State uint8

const (
	StateUnknown  State = iota // probe could not determine anything
	StateAbsent                // resource missing entirely
	StateMismatch              // resource present but diverged from desired
	StatePresent               // resource present and matching desired
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateMismatch:
		return "mismatch"
	case StatePresent:
		return "present"
	default:
		return "unknown"
	}
}

// Observation is a single probe result.
type Observation struct {
	State  State
	Detail string // human-readable finding: resolved path, version, diff summary
}

// NeedsApply reports whether convergence action is required.
func (o Observation) NeedsApply() bool {
	return o.State == StateAbsent || o.State == StateMismatch
}

// Absent returns an Absent observation with a detail message.
func Absent(detail string) Observation { return Observation{State: StateAbsent, Detail: detail} }

// Mismatch returns a Mismatch observation with a detail message.
func Mismatch(detail string) Observation { return Observation{State: StateMismatch, Detail: detail} }

// Present returns a Present observation with a detail message.
func Present(detail string) Observation { return Observation{State: StatePresent, Detail: detail} }

// Unknown returns an Unknown observation with a detail message.
func Unknown(detail string) Observation { return Observation{State: StateUnknown, Detail: detail} }

// Phase is the per-resource position in the convergence lifecycle.
type Phase uint8

const (
	PhasePending Phase = iota
	PhaseProbing
	PhaseConverging
	PhaseVerifying
	PhaseConverged
	PhaseDegraded // tolerated shortfall: optional resource failed or fallback tier succeeded
	PhaseFailed
	PhaseSkipped // a required resource did not converge, step never ran
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseProbing:
		return "probing"
	case PhaseConverging:
		return "converging"
	case PhaseVerifying:
		return "verifying"
	case PhaseConverged:
		return "converged"
	case PhaseDegraded:
		return "degraded"
	case PhaseFailed:
		return "failed"
	case PhaseSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Ok reports whether the phase counts as an acceptable end state.
func (p Phase) Ok() bool {
	return p == PhaseConverged || p == PhaseDegraded
}

// Terminal reports whether the phase is an end state.
func (p Phase) Terminal() bool {
	return p >= PhaseConverged
}
