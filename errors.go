package hostwire

import (
	"errors"
	"fmt"
)

// FailureKind classifies what went wrong with a convergence step.
type FailureKind uint8

const (
	// ProbeUnavailable means the probe itself could not run, e.g. the
	// command used to check is missing. Distinct from ResourceAbsent.
	ProbeUnavailable FailureKind = iota
	// ResourceAbsent means the resource is missing and no apply action
	// exists to create it.
	ResourceAbsent
	// ConvergenceFailed means the apply action returned an error.
	ConvergenceFailed
	// VerificationFailed means apply (and the fallback tier, if any)
	// completed but the re-probe still reports divergence.
	VerificationFailed
	// FatalPrerequisiteMissing means a resource the rest of the run
	// depends on is unrecoverably absent. The run halts immediately.
	FatalPrerequisiteMissing
)

func (k FailureKind) String() string {
	switch k {
	case ProbeUnavailable:
		return "probe unavailable"
	case ResourceAbsent:
		return "resource absent"
	case ConvergenceFailed:
		return "convergence failed"
	case VerificationFailed:
		return "verification failed"
	case FatalPrerequisiteMissing:
		return "fatal prerequisite missing"
	default:
		return "unknown failure"
	}
}

// StepError is a classified failure of one convergence step.
type StepError struct {
	Resource string
	Kind     FailureKind
	Err      error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Resource, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Resource, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Fail builds a StepError for a resource.
func Fail(resource string, kind FailureKind, err error) *StepError {
	return &StepError{Resource: resource, Kind: kind, Err: err}
}

// IsFatal reports whether err carries a FatalPrerequisiteMissing failure.
func IsFatal(err error) bool {
	var se *StepError
	return errors.As(err, &se) && se.Kind == FatalPrerequisiteMissing
}
