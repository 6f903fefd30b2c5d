package ui

import (
	"fmt"
	"io"

	"hostwire"
	"hostwire/reconcile"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// PrintReport renders the terminal state of every resource after a run.
func PrintReport(w io.Writer, report reconcile.Report) {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		detail := res.Observation.Detail
		if res.Err != nil {
			detail = res.Err.Error()
		}
		phase := res.Phase.String()
		if res.UsedFallback && res.Phase == hostwire.PhaseDegraded {
			phase += " (fallback)"
		}
		rows = append(rows, []string{res.Resource, phaseLabel(res.Phase, phase), detail})
	}
	printTable(w, []string{"RESOURCE", "PHASE", "DETAIL"}, rows)
}

// PrintObservations renders probe-only results.
func PrintObservations(w io.Writer, report reconcile.Report) {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, []string{res.Resource, stateLabel(res.Observation.State), res.Observation.Detail})
	}
	printTable(w, []string{"RESOURCE", "STATE", "DETAIL"}, rows)
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func phaseLabel(p hostwire.Phase, text string) string {
	switch p {
	case hostwire.PhaseConverged:
		return Success(text)
	case hostwire.PhaseDegraded:
		return Warn(text)
	case hostwire.PhaseSkipped, hostwire.PhasePending:
		return Muted(text)
	default:
		return Error(text)
	}
}

func stateLabel(s hostwire.State) string {
	switch s {
	case hostwire.StatePresent:
		return Success(s.String())
	case hostwire.StateMismatch:
		return Warn(s.String())
	case hostwire.StateUnknown:
		return Muted(s.String())
	default:
		return Error(s.String())
	}
}
