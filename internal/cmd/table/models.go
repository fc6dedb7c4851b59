// Package table converts gradesync results into rows for table output.
package table

import (
	"strconv"

	"github.com/agentstation/gradesync/internal/cmd/emoji"
	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/publish"
	"github.com/agentstation/gradesync/pkg/reconcile"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// StatusSymbol returns the symbol shown for a publish status.
func StatusSymbol(s publish.Status) string {
	switch s {
	case publish.StatusUpdated, publish.StatusMarkedMissing:
		return emoji.Success
	case publish.StatusFailed:
		return emoji.Error
	case publish.StatusNoCurrentGrade, publish.StatusNoCandidate:
		return emoji.Warning
	default:
		return emoji.Optional
	}
}

// ReportToTableData converts a publish report to table rows. Wide adds the
// decision and error columns.
func ReportToTableData(report *publish.Report, wide bool) Data {
	headers := []string{"", "Student", "ID", "Status", "Current", "Candidate", "Posted"}
	align := []Align{AlignCenter, AlignLeft, AlignRight, AlignLeft, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Action", "Error")
		align = append(align, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		row := []string{
			StatusSymbol(o.Status),
			o.Student,
			strconv.FormatInt(o.StudentID, 10),
			string(o.Status),
			FormatScore(o.Current),
			FormatScore(o.Candidate),
			FormatScore(o.Posted),
		}
		if wide {
			row = append(row, o.Action, o.Error)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ReconcileToTableData lists conflicts and unmatched rows; clean matches are
// only listed when wide is set.
func ReconcileToTableData(result *reconcile.Result, wide bool) Data {
	headers := []string{"", "Line", "Student", "Email", "Detail"}
	var rows [][]string

	for _, m := range result.Matched {
		if !m.NameConflict && !wide {
			continue
		}
		symbol, detail := emoji.Success, "matched"
		if m.NameConflict {
			first, last := m.Match.TrimmedNames()
			symbol, detail = emoji.Warning, "renamed from "+first+" "+last
		}
		rows = append(rows, []string{symbol, strconv.Itoa(m.Source.Line), m.Source.Name, m.Identity.Email, detail})
	}
	for _, m := range result.Unmatched {
		rows = append(rows, []string{emoji.Error, strconv.Itoa(m.Source.Line), m.Source.Name, m.Source.Email, m.Reason})
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// AssignmentsToTableData converts assignments to table rows.
func AssignmentsToTableData(assignments []canvas.Assignment) Data {
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, []string{strconv.FormatInt(a.ID, 10), a.Name, FormatScore(a.PointsPossible), a.DueAt})
	}
	return Data{
		Headers:         []string{"ID", "Name", "Points", "Due"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignRight, AlignLeft},
	}
}

// FormatScore renders an optional score, "-" when absent.
func FormatScore(v *float64) string {
	if v == nil {
		return emoji.Optional
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
