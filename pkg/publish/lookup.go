package publish

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/gradesync/pkg/roster"
)

type nameKey struct {
	first, last string
}

// GradeLookup maps a case-sensitive (first, last) name pair to a platform score.
type GradeLookup struct {
	grades map[nameKey]float64
}

// NewGradeLookup indexes scored platform records by name. Records without a
// score are skipped. When two records share a name the later one wins.
func NewGradeLookup(records []roster.Record, logger *zerolog.Logger) *GradeLookup {
	l := &GradeLookup{grades: make(map[nameKey]float64, len(records))}
	for _, r := range records {
		if r.Score == nil {
			continue
		}
		first, last := r.TrimmedNames()
		key := nameKey{first: first, last: last}
		if prev, dup := l.grades[key]; dup && logger != nil {
			logger.Warn().
				Str("first_name", first).
				Str("last_name", last).
				Float64("previous", prev).
				Float64("score", *r.Score).
				Int("line", r.Line).
				Msg("Duplicate name in platform export; later row wins")
		}
		l.grades[key] = *r.Score
	}
	return l
}

// Lookup returns the score recorded for the given names.
func (l *GradeLookup) Lookup(first, last string) (float64, bool) {
	if l == nil {
		return 0, false
	}
	v, ok := l.grades[nameKey{first: strings.TrimSpace(first), last: strings.TrimSpace(last)}]
	return v, ok
}

// Len returns the number of distinct names.
func (l *GradeLookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.grades)
}
