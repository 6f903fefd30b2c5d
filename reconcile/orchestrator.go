package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"hostwire"
	"hostwire/internal/check"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Event describes one audited action during a run.
type Event struct {
	Resource string
	Action   string // probe, apply, fallback, verify
	Outcome  string
	Detail   string
}

// Orchestrator executes steps top to bottom, once each.
type Orchestrator struct {
	// Tracer receives one span per step. Defaults to the global otel
	// tracer, which is a noop unless an SDK is installed.
	Tracer trace.Tracer

	// OnEvent observes every audited action. Used to feed the journal.
	OnEvent func(Event)

	// DryRun probes only: steps needing action are reported Pending and
	// no apply runs.
	DryRun bool
}

func (o *Orchestrator) tracer() trace.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}
	return otel.Tracer("hostwire/reconcile")
}

func (o *Orchestrator) emit(resource, action, outcome, detail string) {
	if o.OnEvent != nil {
		o.OnEvent(Event{Resource: resource, Action: action, Outcome: outcome, Detail: detail})
	}
	slog.Debug("reconcile event", "resource", resource, "action", action, "outcome", outcome, "detail", detail)
}

// Run converges every step in order. The returned error is non-nil only
// when a fatal prerequisite failed; the run stops at that step and the
// report contains no results for the steps that never ran.
func (o *Orchestrator) Run(ctx context.Context, steps []Step) (Report, error) {
	var report Report
	for _, step := range steps {
		check.Assertf(step.Probe != nil, "step %q has no probe", step.Resource)

		if unmet, ok := o.requirementsMet(report, step); !ok {
			slog.Warn("Skipping resource, requirement not converged.", "resource", step.Resource, "requires", unmet)
			report.Results = append(report.Results, Result{
				Resource: step.Resource,
				Phase:    hostwire.PhaseSkipped,
				Err:      fmt.Errorf("requires %q", unmet),
			})
			continue
		}

		result := o.runStep(ctx, step)
		report.Results = append(report.Results, result)

		if step.Fatal && result.Phase == hostwire.PhaseFailed {
			err := hostwire.Fail(step.Resource, hostwire.FatalPrerequisiteMissing, result.Err)
			slog.Error("Fatal prerequisite missing, aborting run.", "resource", step.Resource, "err", result.Err)
			return report, err
		}
	}
	return report, nil
}

// Probe runs every step's probe and nothing else. Used by status.
func (o *Orchestrator) Probe(ctx context.Context, steps []Step) Report {
	var report Report
	for _, step := range steps {
		obs, err := o.probe(ctx, step)
		phase := hostwire.PhasePending
		if obs.State == hostwire.StatePresent {
			phase = hostwire.PhaseConverged
		} else if err != nil {
			phase = hostwire.PhaseFailed
		}
		report.Results = append(report.Results, Result{
			Resource:    step.Resource,
			Phase:       phase,
			Observation: obs,
			Err:         err,
		})
	}
	return report
}

func (o *Orchestrator) runStep(ctx context.Context, step Step) Result {
	ctx, span := o.tracer().Start(ctx, step.Resource,
		trace.WithAttributes(attribute.String("hostwire.resource", step.Resource)))
	defer span.End()

	result := o.converge(ctx, step)

	if result.Err != nil {
		span.RecordError(result.Err)
	}
	switch result.Phase {
	case hostwire.PhaseFailed:
		span.SetStatus(codes.Error, result.Err.Error())
	default:
		span.SetStatus(codes.Ok, result.Phase.String())
	}
	span.SetAttributes(attribute.String("hostwire.phase", result.Phase.String()))
	return result
}

func (o *Orchestrator) converge(ctx context.Context, step Step) Result {
	result := Result{Resource: step.Resource, Phase: hostwire.PhaseProbing}

	obs, err := o.probe(ctx, step)
	result.Observation = obs
	if err != nil {
		result.Err = hostwire.Fail(step.Resource, hostwire.ProbeUnavailable, err)
		result.Phase = o.failurePhase(step)
		return result
	}
	if obs.State == hostwire.StatePresent {
		result.Phase = hostwire.PhaseConverged
		return result
	}

	if o.DryRun {
		result.Phase = hostwire.PhasePending
		o.emit(step.Resource, "probe", "pending", "apply required: "+obs.Detail)
		return result
	}

	if step.Apply == nil {
		result.Err = hostwire.Fail(step.Resource, hostwire.ResourceAbsent,
			fmt.Errorf("no convergence action for state %s", obs.State))
		result.Phase = o.failurePhase(step)
		return result
	}

	result.Phase = hostwire.PhaseConverging
	applyErr := step.Apply(ctx)
	if applyErr != nil {
		o.emit(step.Resource, "apply", "error", applyErr.Error())
		slog.Warn("Convergence action failed.", "resource", step.Resource, "err", applyErr)
	} else {
		o.emit(step.Resource, "apply", "ok", obs.Detail)
		slog.Info("Applied convergence action.", "resource", step.Resource, "was", obs.State.String())
	}

	result.Phase = hostwire.PhaseVerifying
	verified, verifyErr := o.verify(ctx, step)
	if verifyErr == nil && verified {
		if applyErr != nil {
			// Apply reported an error but the host converged anyway;
			// treat the re-probe as authoritative.
			slog.Info("Resource converged despite apply error.", "resource", step.Resource)
		}
		result.Phase = hostwire.PhaseConverged
		return result
	}

	// One fallback tier, then surface a terminal failure.
	if step.Fallback != nil {
		result.UsedFallback = true
		if fbErr := step.Fallback(ctx); fbErr != nil {
			o.emit(step.Resource, "fallback", "error", fbErr.Error())
			result.Err = hostwire.Fail(step.Resource, hostwire.VerificationFailed, fbErr)
			result.Phase = o.failurePhase(step)
			return result
		}
		o.emit(step.Resource, "fallback", "ok", "")
		verified, verifyErr = o.verify(ctx, step)
		if verifyErr == nil && verified {
			result.Phase = hostwire.PhaseDegraded
			slog.Warn("Resource converged via fallback tier.", "resource", step.Resource)
			return result
		}
	}

	switch {
	case verifyErr != nil:
		result.Err = hostwire.Fail(step.Resource, hostwire.ProbeUnavailable, verifyErr)
	case applyErr != nil:
		result.Err = hostwire.Fail(step.Resource, hostwire.ConvergenceFailed, applyErr)
	default:
		result.Err = hostwire.Fail(step.Resource, hostwire.VerificationFailed,
			fmt.Errorf("still diverged after apply"))
	}
	result.Phase = o.failurePhase(step)
	return result
}

func (o *Orchestrator) probe(ctx context.Context, step Step) (hostwire.Observation, error) {
	obs, err := step.Probe(ctx)
	if err != nil {
		obs.State = hostwire.StateUnknown
		if obs.Detail == "" {
			obs.Detail = err.Error()
		}
		o.emit(step.Resource, "probe", "error", err.Error())
		return obs, err
	}
	o.emit(step.Resource, "probe", obs.State.String(), obs.Detail)
	return obs, nil
}

func (o *Orchestrator) verify(ctx context.Context, step Step) (bool, error) {
	obs, err := step.Probe(ctx)
	if err != nil {
		o.emit(step.Resource, "verify", "error", err.Error())
		return false, err
	}
	o.emit(step.Resource, "verify", obs.State.String(), obs.Detail)
	return obs.State == hostwire.StatePresent, nil
}

// failurePhase maps a failed step to Degraded when the resource is
// optional, Failed otherwise. Fatal steps always fail hard.
func (o *Orchestrator) failurePhase(step Step) hostwire.Phase {
	if step.Optional && !step.Fatal {
		return hostwire.PhaseDegraded
	}
	return hostwire.PhaseFailed
}

func (o *Orchestrator) requirementsMet(report Report, step Step) (string, bool) {
	for _, req := range step.Requires {
		res, found := report.Find(req)
		if !found {
			return req, false
		}
		if res.Phase.Ok() {
			continue
		}
		// A dry run reports would-be actions as Pending; a real run
		// would have converged that requirement by now, so it does not
		// gate the rest of the preview.
		if o.DryRun && res.Phase == hostwire.PhasePending {
			continue
		}
		return req, false
	}
	return "", true
}
