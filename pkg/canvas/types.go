package canvas

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/agentstation/gradesync/pkg/errors"
)

// Student is a course enrollment as returned by the users endpoint.
type Student struct {
	ID           int64  `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	SortableName string `json:"sortable_name" yaml:"sortable_name"`
	LoginID      string `json:"login_id,omitempty" yaml:"login_id,omitempty"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Assignment identifies a course assignment.
type Assignment struct {
	ID             int64    `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	PointsPossible *float64 `json:"points_possible,omitempty" yaml:"points_possible,omitempty"`
	DueAt          string   `json:"due_at,omitempty" yaml:"due_at,omitempty"`
}

// Submission is a student's submission for one assignment.
//
// Grade is kept raw: the gradebook reports it as a string, a number, null, or
// omits it. HasGrade distinguishes an omitted key from a null value.
type Submission struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	AssignmentID  int64           `json:"assignment_id"`
	Grade         json.RawMessage `json:"grade"`
	Score         *float64        `json:"score"`
	WorkflowState string          `json:"workflow_state,omitempty"`

	HasGrade bool `json:"-"`
}

// UnmarshalJSON records whether the grade key was present.
func (s *Submission) UnmarshalJSON(data []byte) error {
	type alias Submission
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Submission(raw)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	grade, ok := keys["grade"]
	s.HasGrade = ok
	s.Grade = grade
	return nil
}

// CurrentGrade returns the posted grade as a number. A null or empty grade is
// zero. The boolean is false when the submission carries no grade key at all.
func (s Submission) CurrentGrade() (float64, bool, error) {
	if !s.HasGrade {
		return 0, false, nil
	}
	raw := bytes.TrimSpace(s.Grade)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, true, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, true, errors.WrapParse("json", "submission grade", err)
		}
	} else {
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, true, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, true, errors.NewValidationError("grade", text, "grade is not numeric")
	}
	return v, true, nil
}

// SubmissionUpdate is the body of a grade write.
type SubmissionUpdate struct {
	PostedGrade         float64 `json:"posted_grade"`
	LatePolicyStatus    string  `json:"late_policy_status"`
	SecondsLateOverride *int64  `json:"seconds_late_override,omitempty"`
}

// MarshalJSON wraps the update in the "submission" envelope.
func (u SubmissionUpdate) MarshalJSON() ([]byte, error) {
	type alias SubmissionUpdate
	return json.Marshal(struct {
		Submission alias `json:"submission"`
	}{alias(u)})
}
