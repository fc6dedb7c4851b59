package reconcile

import (
	"fmt"

	"github.com/agentstation/gradesync/pkg/identity"
	"github.com/agentstation/gradesync/pkg/roster"
)

// MatchResult is the outcome for one roster record.
type MatchResult struct {
	// Identity is the normalized roster identity; zero when the row was malformed.
	Identity identity.Identity

	// Source is the roster record.
	Source roster.Record

	// Match is the platform record as found, before any name correction.
	// Nil when unmatched.
	Match *roster.Record

	// NameConflict is set when the platform names differ from the roster's.
	NameConflict bool

	// Reason explains why the record is unmatched.
	Reason string

	// Duplicates counts additional platform records sharing the email.
	Duplicates int
}

// Matched reports whether a platform record was found.
func (m MatchResult) Matched() bool {
	return m.Match != nil
}

// Result is the outcome of a reconciliation run.
type Result struct {
	// Matched and Unmatched partition the roster, in roster order.
	Matched   []MatchResult
	Unmatched []MatchResult

	// Corrected is the platform export with roster names applied. It is a new
	// slice; the caller's records are never modified.
	Corrected []roster.Record

	Stats Stats
}

// Stats summarizes a reconciliation run.
type Stats struct {
	Processed       int `json:"processed" yaml:"processed"`
	Matched         int `json:"matched" yaml:"matched"`
	Unmatched       int `json:"unmatched" yaml:"unmatched"`
	Malformed       int `json:"malformed" yaml:"malformed"`
	Conflicts       int `json:"conflicts" yaml:"conflicts"`
	CorrectedRows   int `json:"corrected_rows" yaml:"corrected_rows"`
	DuplicateEmails int `json:"duplicate_emails" yaml:"duplicate_emails"`
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d matched, %d unmatched, %d name conflicts, %d rows corrected",
		s.Processed, s.Matched, s.Unmatched, s.Conflicts, s.CorrectedRows)
}

// Conflicts returns the matched results whose names were corrected.
func (r *Result) Conflicts() []MatchResult {
	var out []MatchResult
	for _, m := range r.Matched {
		if m.NameConflict {
			out = append(out, m)
		}
	}
	return out
}
