// Package gradebook loads and writes the CSV exports exchanged with the roster
// system and the grading platform.
package gradebook

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/roster"
)

// RosterColumns are required in a roster export.
var RosterColumns = []string{roster.ColumnStudent, roster.ColumnID, roster.ColumnSISLogin, roster.ColumnSection}

// PlatformColumns are required in a platform export.
var PlatformColumns = []string{roster.ColumnEmail, roster.ColumnFirstName, roster.ColumnLastName}

// ScoreColumn returns the platform column holding an assignment's points.
func ScoreColumn(assignment string) string {
	return assignment + "(points)"
}

// Export is a loaded CSV file.
type Export struct {
	Path    string
	Header  []string
	Records []roster.Record
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRoster loads a roster export from path.
func ReadRoster(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return DecodeRoster(f, path)
}

// DecodeRoster parses a roster export. name is used in errors.
func DecodeRoster(r io.Reader, name string) (*Export, error) {
	header, rows, err := readTable(r, name, RosterColumns)
	if err != nil {
		return nil, err
	}

	exp := &Export{Path: name, Header: header, Records: make([]roster.Record, 0, len(rows))}
	for i, fields := range rows {
		exp.Records = append(exp.Records, roster.Record{
			Origin:    roster.OriginRoster,
			Line:      i + 2,
			Name:      fields[roster.ColumnStudent],
			Email:     fields[roster.ColumnSISLogin],
			StudentID: fields[roster.ColumnID],
			Section:   fields[roster.ColumnSection],
			Fields:    fields,
		})
	}
	return exp, nil
}

// ReadScores loads a platform export from path. When assignment is set its
// score column is required and parsed into Record.Score.
func ReadScores(path, assignment string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return DecodeScores(f, path, assignment)
}

// DecodeScores parses a platform export. name is used in errors.
func DecodeScores(r io.Reader, name, assignment string) (*Export, error) {
	required := PlatformColumns
	scoreCol := ""
	if assignment != "" {
		scoreCol = ScoreColumn(assignment)
		required = append(append([]string{}, PlatformColumns...), scoreCol)
	}

	header, rows, err := readTable(r, name, required)
	if err != nil {
		return nil, err
	}

	exp := &Export{Path: name, Header: header, Records: make([]roster.Record, 0, len(rows))}
	for i, fields := range rows {
		rec := roster.Record{
			Origin:    roster.OriginPlatform,
			Line:      i + 2,
			FirstName: fields[roster.ColumnFirstName],
			LastName:  fields[roster.ColumnLastName],
			Email:     fields[roster.ColumnEmail],
			Fields:    fields,
		}
		if scoreCol != "" {
			if raw := strings.TrimSpace(fields[scoreCol]); raw != "" {
				v, err := strconv.ParseFloat(raw, 64)
				if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
					err = errors.New("not a finite number")
				}
				if err != nil {
					return nil, &errors.ParseError{
						Format:  "csv",
						File:    name,
						Line:    rec.Line,
						Message: "invalid score " + strconv.Quote(raw) + " in column " + scoreCol,
						Err:     err,
					}
				}
				rec.Score = &v
			}
		}
		exp.Records = append(exp.Records, rec)
	}
	return exp, nil
}

// readTable reads a CSV with a header row and checks the required columns.
// Each row is returned keyed by column name.
func readTable(r io.Reader, name string, required []string) ([]string, []map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.WrapIO("read", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, &errors.MissingColumnError{File: name, Column: required[0]}
	}
	if err != nil {
		return nil, nil, errors.WrapParse("csv", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			return nil, nil, &errors.MissingColumnError{File: name, Column: col}
		}
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.WrapParse("csv", name, err)
		}
		if blank(rec) {
			continue
		}
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				fields[col] = rec[i]
			} else {
				fields[col] = ""
			}
		}
		rows = append(rows, fields)
	}
	return header, rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
