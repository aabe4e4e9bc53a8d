package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
)

// solvedMsg carries the outcome of one run back into Update.
type solvedMsg struct {
	generation uint64
	report     bundle.Report
	err        error
}

// solveCmd runs the planner off the UI loop. req is a snapshot of the
// workspace generation it was taken from and is owned by the command.
func solveCmd(ctx context.Context, planner Planner, generation uint64, req bundle.Request) tea.Cmd {
	return func() tea.Msg {
		report, err := planner.Plan(ctx, req)
		return solvedMsg{generation: generation, report: report, err: err}
	}
}
