// Package roster defines the source records exchanged between the gradebook
// loaders, the reconciliation engine and the publisher.
package roster

import (
	"maps"
	"strings"
)

// Origin identifies which export a record came from.
type Origin string

// Record origins.
const (
	// OriginRoster is the institutional roster export (authoritative for names).
	OriginRoster Origin = "roster"
	// OriginPlatform is the grading-platform export (authoritative for scores).
	OriginPlatform Origin = "platform"
)

// String returns the origin name.
func (o Origin) String() string { return string(o) }

// Column names of the two exports.
const (
	ColumnStudent   = "Student"
	ColumnID        = "ID"
	ColumnSISLogin  = "SIS Login ID"
	ColumnSection   = "Section"
	ColumnEmail     = "School email"
	ColumnFirstName = "First name"
	ColumnLastName  = "Last name"
)

// Record is one row from either source. Roster rows carry Name, StudentID and
// Section; platform rows carry FirstName, LastName and Score. Fields holds every
// original column so the row can be written back unchanged.
type Record struct {
	Origin Origin `json:"origin" yaml:"origin"`
	Line   int    `json:"line" yaml:"line"`

	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Email     string `json:"email" yaml:"email"`

	StudentID string   `json:"student_id,omitempty" yaml:"student_id,omitempty"`
	Section   string   `json:"section,omitempty" yaml:"section,omitempty"`
	Score     *float64 `json:"score,omitempty" yaml:"score,omitempty"`

	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field returns an original column value.
func (r Record) Field(column string) string {
	return r.Fields[column]
}

// NormalizedEmail returns the email lowercased and trimmed.
func (r Record) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(r.Email))
}

// TrimmedNames returns the first and last name with surrounding space removed.
func (r Record) TrimmedNames() (first, last string) {
	return strings.TrimSpace(r.FirstName), strings.TrimSpace(r.LastName)
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	out := r
	if r.Score != nil {
		score := *r.Score
		out.Score = &score
	}
	if r.Fields != nil {
		out.Fields = maps.Clone(r.Fields)
	}
	return out
}

// WithNames returns a copy of r carrying the given names. When the record holds
// original columns, the named name columns are rewritten too so a re-export
// reflects the correction.
func (r Record) WithNames(first, last string, firstColumn, lastColumn string) Record {
	out := r.Clone()
	out.FirstName = first
	out.LastName = last
	if out.Fields != nil {
		if _, ok := out.Fields[firstColumn]; ok && firstColumn != "" {
			out.Fields[firstColumn] = first
		}
		if _, ok := out.Fields[lastColumn]; ok && lastColumn != "" {
			out.Fields[lastColumn] = last
		}
	}
	return out
}

// Float returns a pointer to v, for building scored records.
func Float(v float64) *float64 {
	return &v
}
