// Package policy decides, per student, whether and how a candidate score from the
// grading platform replaces the score currently posted in the gradebook.
//
// Policies are pure: Decide looks only at its two arguments. Each variant is a
// separate type selected by name; they are never merged.
package policy

import (
	"fmt"
	"sort"
	"time"

	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/errors"
)

// LateCreditFactor is the share of a late score that is credited.
const LateCreditFactor = 0.8

// Action is the kind of decision a policy reaches.
type Action int

// Policy actions.
const (
	NoChange Action = iota
	MarkMissing
	ApplyGrade
	ApplyPartialCredit
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case NoChange:
		return "no-change"
	case MarkMissing:
		return "mark-missing"
	case ApplyGrade:
		return "apply-grade"
	case ApplyPartialCredit:
		return "apply-partial-credit"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// LateStatus is the late-policy flag posted alongside a grade.
type LateStatus string

// Late statuses understood by the gradebook.
const (
	StatusNone    LateStatus = "none"
	StatusLate    LateStatus = "late"
	StatusMissing LateStatus = "missing"
)

// Decision is the outcome of a policy for one student.
type Decision struct {
	Action Action
	Grade  float64
	Status LateStatus
	// LateOverride, when set, is posted as the submission's seconds-late override.
	LateOverride *time.Duration
}

// Writes reports whether the decision requires a gradebook update.
func (d Decision) Writes() bool {
	return d.Action != NoChange
}

// String renders the decision for logs and reports.
func (d Decision) String() string {
	switch d.Action {
	case NoChange:
		return d.Action.String()
	case MarkMissing:
		return fmt.Sprintf("%s (%s)", d.Action, d.Status)
	default:
		return fmt.Sprintf("%s %g (%s)", d.Action, d.Grade, d.Status)
	}
}

// Policy defines a grade synchronization rule.
type Policy interface {
	// Name returns the policy name used on the command line.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Decide compares the current gradebook score with the candidate score.
	Decide(current, candidate float64) Decision
}

// CurrentIndependent is implemented by policies whose decision does not
// depend on the current grade, letting callers skip fetching it.
type CurrentIndependent interface {
	IgnoresCurrent() bool
}

// basePolicy provides the shared name and description.
type basePolicy struct {
	name        string
	description string
}

// Name returns the policy name.
func (p *basePolicy) Name() string {
	return p.name
}

// Description returns a human-readable description.
func (p *basePolicy) Description() string {
	return p.description
}

func noChange() Decision {
	return Decision{Action: NoChange}
}

func markMissing() Decision {
	return Decision{Action: MarkMissing, Grade: 0, Status: StatusMissing}
}

func override(d time.Duration) *time.Duration {
	return &d
}

// Policy names.
const (
	NameThresholdOverride  = "threshold-override"
	NameProportionalCredit = "proportional-credit"
	NameDirect             = "direct"
)

// Default is the policy used when none is configured.
const Default = NameThresholdOverride

var registry = map[string]func() Policy{
	NameThresholdOverride:  func() Policy { return NewThresholdOverride() },
	NameProportionalCredit: func() Policy { return NewProportionalCredit() },
	NameDirect:             func() Policy { return NewDirect() },
}

// Lookup returns the policy registered under name.
func Lookup(name string) (Policy, error) {
	if name == "" {
		name = Default
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, &errors.NotFoundError{Resource: "policy", ID: name, Available: Names()}
	}
	return ctor(), nil
}

// Names returns the registered policy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThresholdOverride replaces the posted score with the full candidate score,
// flagged late, only when the candidate is still ahead after the late deduction.
type ThresholdOverride struct {
	basePolicy
}

// NewThresholdOverride creates the threshold-override policy.
func NewThresholdOverride() *ThresholdOverride {
	return &ThresholdOverride{basePolicy{
		name:        NameThresholdOverride,
		description: "Post the full late score when 80% of it still beats the current score",
	}}
}

// Decide implements Policy.
func (p *ThresholdOverride) Decide(current, candidate float64) Decision {
	switch {
	case candidate == 0:
		return markMissing()
	case current == 0 && candidate > 0:
		return p.late(candidate)
	case current > 0 && candidate > current && candidate*LateCreditFactor > current:
		return p.late(candidate)
	default:
		return noChange()
	}
}

func (p *ThresholdOverride) late(grade float64) Decision {
	return Decision{
		Action:       ApplyGrade,
		Grade:        grade,
		Status:       StatusLate,
		LateOverride: override(constants.LateOverride),
	}
}

// ProportionalCredit credits 80% of the improvement over the current score.
type ProportionalCredit struct {
	basePolicy
}

// NewProportionalCredit creates the proportional-credit policy.
func NewProportionalCredit() *ProportionalCredit {
	return &ProportionalCredit{basePolicy{
		name:        NameProportionalCredit,
		description: "Credit 80% of the late improvement on top of the current score",
	}}
}

// Decide implements Policy.
func (p *ProportionalCredit) Decide(current, candidate float64) Decision {
	if candidate > current || current == 0 {
		return Decision{
			Action:       ApplyPartialCredit,
			Grade:        current + LateCreditFactor*(candidate-current),
			Status:       StatusLate,
			LateOverride: override(0),
		}
	}
	return noChange()
}

// Direct posts the candidate score as-is, marking zero scores missing.
type Direct struct {
	basePolicy
}

// NewDirect creates the direct policy.
func NewDirect() *Direct {
	return &Direct{basePolicy{
		name:        NameDirect,
		description: "Post the platform score unchanged; zero is marked missing",
	}}
}

// IgnoresCurrent implements CurrentIndependent.
func (p *Direct) IgnoresCurrent() bool { return true }

// Decide implements Policy.
func (p *Direct) Decide(_, candidate float64) Decision {
	if candidate == 0 {
		return markMissing()
	}
	return Decision{Action: ApplyGrade, Grade: candidate, Status: StatusNone}
}
