package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/gradesync/pkg/identity"
	"github.com/agentstation/gradesync/pkg/roster"
)

func TestEmailMatcher(t *testing.T) {
	id := identity.Identity{Email: "jane@ucsc.edu", LastName: "Doe", FirstName: "Jane"}
	m := NewEmailMatcher()

	tests := []struct {
		name       string
		candidates []roster.Record
		matched    bool
		conflict   bool
		duplicates int
	}{
		{
			name:       "no candidates",
			candidates: nil,
		},
		{
			name:       "exact",
			candidates: []roster.Record{{Email: "jane@ucsc.edu", FirstName: "Jane", LastName: "Doe"}},
			matched:    true,
		},
		{
			name:       "email case and padding ignored",
			candidates: []roster.Record{{Email: " JANE@ucsc.EDU", FirstName: " Jane ", LastName: "Doe "}},
			matched:    true,
		},
		{
			name:       "case-sensitive names",
			candidates: []roster.Record{{Email: "jane@ucsc.edu", FirstName: "jane", LastName: "Doe"}},
			matched:    true,
			conflict:   true,
		},
		{
			name: "first duplicate wins",
			candidates: []roster.Record{
				{Email: "other@ucsc.edu", FirstName: "Jane", LastName: "Doe"},
				{Email: "jane@ucsc.edu", FirstName: "Janet", LastName: "Doe"},
				{Email: "jane@ucsc.edu", FirstName: "Jane", LastName: "Doe"},
			},
			matched:    true,
			conflict:   true,
			duplicates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(id, tt.candidates)
			assert.Equal(t, id, got.Identity)
			assert.Equal(t, tt.matched, got.Matched())
			assert.Equal(t, tt.conflict, got.NameConflict)
			assert.Equal(t, tt.duplicates, got.Duplicates)
			if !tt.matched {
				assert.Equal(t, ReasonNoEmailMatch, got.Reason)
				return
			}
			require.NotNil(t, got.Match)
			assert.Empty(t, got.Reason)
		})
	}
}

func TestEmailMatcherReturnsCopy(t *testing.T) {
	candidates := []roster.Record{{Email: "jane@ucsc.edu", FirstName: "Jane", LastName: "Doe"}}
	got := NewEmailMatcher().Match(identity.Identity{Email: "jane@ucsc.edu"}, candidates)
	require.NotNil(t, got.Match)
	got.Match.FirstName = "changed"
	assert.Equal(t, "Jane", candidates[0].FirstName)
}

func TestResultConflicts(t *testing.T) {
	r := &Result{Matched: []MatchResult{{NameConflict: true}, {}, {NameConflict: true}}}
	assert.Len(t, r.Conflicts(), 2)
}
