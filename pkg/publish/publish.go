// Package publish pushes platform scores into the gradebook, one student at a
// time, under a selectable policy.
//
// Per-student failures are recorded in the Report and the run continues.
// Only context cancellation aborts a run.
package publish

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/identity"
	"github.com/agentstation/gradesync/pkg/logging"
	"github.com/agentstation/gradesync/pkg/policy"
)

// Gradebook is the remote side of a publish run.
type Gradebook interface {
	Submission(ctx context.Context, courseID string, assignmentID, userID int64) (*canvas.Submission, error)
	UpdateSubmission(ctx context.Context, courseID string, assignmentID, userID int64, update canvas.SubmissionUpdate) error
}

// Publisher applies a policy to every roster student.
type Publisher struct {
	gradebook     Gradebook
	policy        policy.Policy
	logger        *zerolog.Logger
	dryRun        bool
	concurrency   int
	missingAsZero bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPolicy sets the grade policy. The default is threshold-override.
func WithPolicy(p policy.Policy) Option {
	return func(pub *Publisher) {
		if p != nil {
			pub.policy = p
		}
	}
}

// WithLogger sets the logger. By default the logger is taken from the context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(pub *Publisher) {
		pub.logger = logger
	}
}

// WithDryRun decides every student but never writes.
func WithDryRun(dryRun bool) Option {
	return func(pub *Publisher) {
		pub.dryRun = dryRun
	}
}

// WithConcurrency sets how many students are processed at once, capped at
// constants.MaxConcurrency. One means sequential.
func WithConcurrency(n int) Option {
	return func(pub *Publisher) {
		pub.concurrency = min(max(n, 1), constants.MaxConcurrency)
	}
}

// WithMissingCandidateAsZero treats a student absent from the platform export
// as having scored zero instead of skipping them.
func WithMissingCandidateAsZero(enabled bool) Option {
	return func(pub *Publisher) {
		pub.missingAsZero = enabled
	}
}

// New creates a Publisher.
func New(gradebook Gradebook, opts ...Option) *Publisher {
	p := &Publisher{
		gradebook:   gradebook,
		policy:      policy.NewThresholdOverride(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish decides and writes a grade for every student, in roster order.
func (p *Publisher) Publish(ctx context.Context, courseID string, assignment canvas.Assignment, students []canvas.Student, lookup *GradeLookup) (*Report, error) {
	if p.logger != nil {
		ctx = logging.WithLogger(ctx, p.logger)
	}
	ctx = logging.WithCourse(ctx, courseID)
	ctx = logging.WithAssignment(ctx, assignment.ID, assignment.Name)
	logger := logging.FromContext(ctx)

	logger.Info().
		Str("policy", p.policy.Name()).
		Int("students", len(students)).
		Int("scores", lookup.Len()).
		Bool("dry_run", p.dryRun).
		Msg("Publishing grades")

	started := time.Now()
	outcomes := make([]Outcome, len(students))

	if p.concurrency <= 1 {
		for i := range students {
			if err := ctx.Err(); err != nil {
				return p.report(assignment, outcomes[:i]), err
			}
			outcomes[i] = p.publishOne(ctx, courseID, assignment.ID, students[i], lookup)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		for i := range students {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				outcomes[i] = p.publishOne(gctx, courseID, assignment.ID, students[i], lookup)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return p.report(assignment, completed(outcomes)), err
		}
	}

	report := p.report(assignment, outcomes)
	logger.Info().
		Int("updated", report.Updated).
		Int("marked_missing", report.MarkedMissing).
		Int("unchanged", report.Unchanged).
		Int("failed", report.Failed).
		Dur("elapsed", time.Since(started)).
		Msg("Publish complete")
	return report, nil
}

func (p *Publisher) report(assignment canvas.Assignment, outcomes []Outcome) *Report {
	r := &Report{
		Assignment: assignment.Name,
		Policy:     p.policy.Name(),
		DryRun:     p.dryRun,
		Outcomes:   outcomes,
	}
	for _, o := range outcomes {
		r.count(o)
	}
	return r
}

// completed drops the zero outcomes of students never reached.
func completed(outcomes []Outcome) []Outcome {
	out := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Status != "" {
			out = append(out, o)
		}
	}
	return out
}

func (p *Publisher) publishOne(ctx context.Context, courseID string, assignmentID int64, student canvas.Student, lookup *GradeLookup) Outcome {
	ctx = logging.WithStudent(ctx, student.ID, student.SortableName)
	logger := logging.FromContext(ctx)
	out := Outcome{StudentID: student.ID, Student: student.SortableName}

	last, first := identity.SplitSortable(student.SortableName)
	candidate, ok := lookup.Lookup(first, last)
	if !ok {
		if !p.missingAsZero {
			logger.Info().Msg("No platform score for student")
			out.Status = StatusNoCandidate
			return out
		}
		candidate = 0
	}
	out.Candidate = &candidate

	var current float64
	if ci, ok := p.policy.(policy.CurrentIndependent); !ok || !ci.IgnoresCurrent() {
		sub, err := p.gradebook.Submission(ctx, courseID, assignmentID, student.ID)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to fetch submission")
			out.Status = StatusNoCurrentGrade
			out.fail(err)
			return out
		}
		grade, present, err := sub.CurrentGrade()
		if err != nil || !present {
			logger.Info().Err(err).Msg("No current grade for student")
			out.Status = StatusNoCurrentGrade
			out.fail(err)
			return out
		}
		current = grade
		out.Current = &current
	}

	d := p.policy.Decide(current, candidate)
	out.Decision = d
	out.Action = d.Action.String()

	if !d.Writes() {
		logger.Debug().Float64("current", current).Float64("candidate", candidate).Msg("Grade unchanged")
		out.Status = StatusUnchanged
		return out
	}

	posted := d.Grade
	out.Posted = &posted
	status := StatusUpdated
	if d.Action == policy.MarkMissing {
		status = StatusMarkedMissing
	}

	if p.dryRun {
		logger.Info().Str("decision", d.String()).Msg("Would update grade")
		out.Status = status
		return out
	}

	if err := p.gradebook.UpdateSubmission(ctx, courseID, assignmentID, student.ID, updateFor(d)); err != nil {
		logger.Error().Err(err).Str("decision", d.String()).Msg("Failed to update grade")
		out.Status = StatusFailed
		out.fail(err)
		return out
	}

	logger.Info().Str("decision", d.String()).Msg("Updated grade")
	out.Status = status
	return out
}

func (o *Outcome) fail(err error) {
	if err == nil {
		return
	}
	o.Err = err
	o.Error = err.Error()
}

// updateFor converts a decision into the gradebook write body.
func updateFor(d policy.Decision) canvas.SubmissionUpdate {
	u := canvas.SubmissionUpdate{
		PostedGrade:      d.Grade,
		LatePolicyStatus: string(d.Status),
	}
	if d.LateOverride != nil {
		seconds := int64(math.Round(d.LateOverride.Seconds()))
		u.SecondsLateOverride = &seconds
	}
	return u
}
