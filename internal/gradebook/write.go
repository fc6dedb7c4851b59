package gradebook

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/reconcile"
	"github.com/agentstation/gradesync/pkg/roster"
)

// Output file names.
const (
	GradedFile    = "canvas_graded_output.csv"
	UnmatchedFile = "unmatched_emails.csv"
	CorrectedFile = "updated_zybooks.csv"
)

// GradedHeader is the column order of the graded output.
var GradedHeader = []string{
	roster.ColumnStudent, roster.ColumnID, roster.ColumnSISLogin, roster.ColumnSection, "First Name", "Last Name",
}

// WriteGraded writes one row per matched roster record.
func WriteGraded(w io.Writer, matched []reconcile.MatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GradedHeader); err != nil {
		return err
	}
	for _, m := range matched {
		src := m.Source
		if err := cw.Write([]string{
			src.Name, src.StudentID, m.Identity.Email, src.Section, m.Identity.FirstName, m.Identity.LastName,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecords writes records in header order using their original columns.
func WriteRecords(w io.Writer, header []string, records []roster.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, r := range records {
		for i, col := range header {
			row[i] = r.Field(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUnmatched writes the unmatched roster rows unchanged.
func WriteUnmatched(w io.Writer, header []string, unmatched []reconcile.MatchResult) error {
	records := make([]roster.Record, 0, len(unmatched))
	for _, m := range unmatched {
		records = append(records, m.Source)
	}
	return WriteRecords(w, header, records)
}

// Outputs holds the paths of the written artifacts.
type Outputs struct {
	Graded    string `json:"graded" yaml:"graded"`
	Unmatched string `json:"unmatched" yaml:"unmatched"`
	Corrected string `json:"corrected" yaml:"corrected"`
}

// WriteOutputs writes the three reconciliation artifacts into dir.
func WriteOutputs(dir string, rosterExport, platformExport *Export, result *reconcile.Result) (*Outputs, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}

	out := &Outputs{
		Graded:    filepath.Join(dir, GradedFile),
		Unmatched: filepath.Join(dir, UnmatchedFile),
		Corrected: filepath.Join(dir, CorrectedFile),
	}

	if err := writeFile(out.Graded, func(w io.Writer) error {
		return WriteGraded(w, result.Matched)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(out.Unmatched, func(w io.Writer) error {
		return WriteUnmatched(w, rosterExport.Header, result.Unmatched)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(out.Corrected, func(w io.Writer) error {
		return WriteRecords(w, platformExport.Header, result.Corrected)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}
