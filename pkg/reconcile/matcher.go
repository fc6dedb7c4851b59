package reconcile

import (
	"github.com/agentstation/gradesync/pkg/identity"
	"github.com/agentstation/gradesync/pkg/roster"
)

// ReasonNoEmailMatch is reported when no platform record shares the email.
const ReasonNoEmailMatch = "no email match"

// Matcher finds the platform record that corresponds to a roster identity.
type Matcher interface {
	// Match is called exactly once per roster record.
	Match(id identity.Identity, candidates []roster.Record) MatchResult
}

// EmailMatcher matches on normalized email. The first candidate wins when
// several share an email; the rest are counted in MatchResult.Duplicates.
type EmailMatcher struct{}

// NewEmailMatcher creates the default matcher.
func NewEmailMatcher() *EmailMatcher {
	return &EmailMatcher{}
}

// Match implements Matcher.
func (m *EmailMatcher) Match(id identity.Identity, candidates []roster.Record) MatchResult {
	result := MatchResult{Identity: id}

	for i := range candidates {
		if candidates[i].NormalizedEmail() != id.Email {
			continue
		}
		if result.Match != nil {
			result.Duplicates++
			continue
		}
		match := candidates[i]
		result.Match = &match
	}

	if result.Match == nil {
		result.Reason = ReasonNoEmailMatch
		return result
	}

	first, last := result.Match.TrimmedNames()
	result.NameConflict = !id.SameName(first, last)
	return result
}
