package output

import (
	"io"

	"github.com/agentstation/gradesync/internal/cmd/constants"
	"github.com/agentstation/gradesync/internal/cmd/globals"
	"github.com/agentstation/gradesync/internal/cmd/table"
	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/publish"
	"github.com/agentstation/gradesync/pkg/reconcile"
)

// IsTable reports whether the flags select a table format.
func IsTable(globalFlags *globals.Flags) bool {
	switch globalFlags.Output {
	case constants.FormatTable, constants.FormatWide, "":
		return true
	}
	return false
}

// FormatReport writes a publish report in the selected format.
func FormatReport(w io.Writer, report *publish.Report, globalFlags *globals.Flags) error {
	formatter := NewFormatter(Format(globalFlags.Output))

	var outputData any = report
	if IsTable(globalFlags) {
		outputData = table.ReportToTableData(report, globalFlags.Output == constants.FormatWide)
	}
	return formatter.Format(w, outputData)
}

// ReconcileSummary is the structured form of a reconciliation run.
type ReconcileSummary struct {
	Stats     reconcile.Stats         `json:"stats" yaml:"stats"`
	Conflicts []reconcile.MatchResult `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Unmatched []reconcile.MatchResult `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
	Outputs   any                     `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// FormatReconcile writes a reconciliation result in the selected format.
func FormatReconcile(w io.Writer, result *reconcile.Result, outputs any, globalFlags *globals.Flags) error {
	formatter := NewFormatter(Format(globalFlags.Output))

	var outputData any = ReconcileSummary{
		Stats:     result.Stats,
		Conflicts: result.Conflicts(),
		Unmatched: result.Unmatched,
		Outputs:   outputs,
	}
	if IsTable(globalFlags) {
		wide := globalFlags.Output == constants.FormatWide
		if err := formatter.Format(w, table.ReconcileToTableData(result, wide)); err != nil {
			return err
		}
		if !wide {
			return nil
		}
		// Wide output follows the rows with every counter.
		outputData = result.Stats
	}
	return formatter.Format(w, outputData)
}

// FormatAssignments writes a course's assignments in the selected format.
func FormatAssignments(w io.Writer, assignments []canvas.Assignment, globalFlags *globals.Flags) error {
	formatter := NewFormatter(Format(globalFlags.Output))

	var outputData any = assignments
	if IsTable(globalFlags) {
		outputData = table.AssignmentsToTableData(assignments)
	}
	return formatter.Format(w, outputData)
}
