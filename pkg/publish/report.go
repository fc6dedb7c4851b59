package publish

import (
	"fmt"

	"github.com/agentstation/gradesync/pkg/policy"
)

// Status is the per-student result of a publish run.
type Status string

// Outcome statuses.
const (
	StatusUpdated        Status = "updated"
	StatusMarkedMissing  Status = "marked-missing"
	StatusUnchanged      Status = "unchanged"
	StatusNoCurrentGrade Status = "no-current-grade"
	StatusNoCandidate    Status = "no-candidate"
	StatusFailed         Status = "failed"
)

// Outcome records what happened for one student.
type Outcome struct {
	StudentID int64    `json:"student_id" yaml:"student_id"`
	Student   string   `json:"student" yaml:"student"`
	Status    Status   `json:"status" yaml:"status"`
	Current   *float64 `json:"current,omitempty" yaml:"current,omitempty"`
	Candidate *float64 `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Posted    *float64 `json:"posted,omitempty" yaml:"posted,omitempty"`
	Action    string   `json:"action,omitempty" yaml:"action,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`

	Decision policy.Decision `json:"-" yaml:"-"`
	Err      error           `json:"-" yaml:"-"`
}

// Report summarizes a publish run. Outcomes are in roster order.
type Report struct {
	Assignment string `json:"assignment" yaml:"assignment"`
	Policy     string `json:"policy" yaml:"policy"`
	DryRun     bool   `json:"dry_run" yaml:"dry_run"`

	Updated        int `json:"updated" yaml:"updated"`
	MarkedMissing  int `json:"marked_missing" yaml:"marked_missing"`
	Unchanged      int `json:"unchanged" yaml:"unchanged"`
	NoCurrentGrade int `json:"no_current_grade" yaml:"no_current_grade"`
	NoCandidate    int `json:"no_candidate" yaml:"no_candidate"`
	Failed         int `json:"failed" yaml:"failed"`

	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

func (r *Report) count(o Outcome) {
	switch o.Status {
	case StatusUpdated:
		r.Updated++
	case StatusMarkedMissing:
		r.MarkedMissing++
	case StatusUnchanged:
		r.Unchanged++
	case StatusNoCurrentGrade:
		r.NoCurrentGrade++
	case StatusNoCandidate:
		r.NoCandidate++
	case StatusFailed:
		r.Failed++
	}
}

// Writes returns the number of gradebook writes made, or planned in a dry run.
func (r *Report) Writes() int {
	return r.Updated + r.MarkedMissing
}

// String returns a one-line summary.
func (r *Report) String() string {
	prefix := ""
	if r.DryRun {
		prefix = "dry run: "
	}
	return fmt.Sprintf("%s%d updated, %d marked missing, %d unchanged, %d without current grade, %d without platform score, %d failed",
		prefix, r.Updated, r.MarkedMissing, r.Unchanged, r.NoCurrentGrade, r.NoCandidate, r.Failed)
}
