// Package reconcile matches roster records to grading-platform records by
// email and corrects platform names to the roster's legal names.
//
// The roster is authoritative for names; the platform is authoritative for
// scores. Every roster record yields exactly one MatchResult.
package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/identity"
	"github.com/agentstation/gradesync/pkg/logging"
	"github.com/agentstation/gradesync/pkg/roster"
)

// Engine reconciles a roster export against a platform export.
type Engine struct {
	matcher     Matcher
	logger      *zerolog.Logger
	firstColumn string
	lastColumn  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithMatcher replaces the email matcher.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithLogger sets the logger. By default the logger is taken from the context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithNameColumns sets the platform columns rewritten on correction.
func WithNameColumns(first, last string) Option {
	return func(e *Engine) {
		e.firstColumn = first
		e.lastColumn = last
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		matcher:     NewEmailMatcher(),
		firstColumn: roster.ColumnFirstName,
		lastColumn:  roster.ColumnLastName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile matches every roster record against the platform records.
//
// On a name conflict every platform record with that email takes the roster's
// names. The returned Corrected slice is a copy; sourceB is not modified.
func (e *Engine) Reconcile(ctx context.Context, sourceA, sourceB []roster.Record) (*Result, error) {
	logger := e.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	working := make([]roster.Record, len(sourceB))
	for i := range sourceB {
		working[i] = sourceB[i].Clone()
	}

	result := &Result{
		Matched:   make([]MatchResult, 0, len(sourceA)),
		Unmatched: make([]MatchResult, 0),
	}
	corrected := make(map[int]bool)

	for _, rec := range sourceA {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Stats.Processed++

		id, err := identity.Normalize(rec.Name, rec.Email)
		if err != nil {
			reason := err.Error()
			var mr *errors.MalformedRecordError
			if errors.As(err, &mr) {
				reason = mr.Reason
			}
			logger.Debug().Int("line", rec.Line).Str("reason", reason).Msg("Skipping roster row")
			result.Unmatched = append(result.Unmatched, MatchResult{Source: rec, Reason: reason})
			result.Stats.Unmatched++
			result.Stats.Malformed++
			continue
		}

		m := e.matcher.Match(id, working)
		m.Source = rec
		if !m.Matched() {
			result.Unmatched = append(result.Unmatched, m)
			result.Stats.Unmatched++
			continue
		}

		if m.Duplicates > 0 {
			logger.Warn().
				Str("email", id.Email).
				Int("duplicates", m.Duplicates).
				Msg("Multiple platform rows share an email; using the first")
			result.Stats.DuplicateEmails++
		}

		if m.NameConflict {
			result.Stats.Conflicts++
			first, last := m.Match.TrimmedNames()
			logger.Info().
				Str("email", id.Email).
				Str("from", first+" "+last).
				Str("to", id.FirstName+" "+id.LastName).
				Msg("Correcting platform name")
			for i := range working {
				if working[i].NormalizedEmail() != id.Email {
					continue
				}
				working[i] = working[i].WithNames(id.FirstName, id.LastName, e.firstColumn, e.lastColumn)
				corrected[i] = true
			}
		}

		result.Matched = append(result.Matched, m)
		result.Stats.Matched++
	}

	result.Corrected = working
	result.Stats.CorrectedRows = len(corrected)

	logger.Info().
		Int("processed", result.Stats.Processed).
		Int("matched", result.Stats.Matched).
		Int("unmatched", result.Stats.Unmatched).
		Int("conflicts", result.Stats.Conflicts).
		Msg("Reconciliation complete")

	return result, nil
}
