package canvas

import (
	"strings"
	"unicode"

	"github.com/agentstation/gradesync/pkg/errors"
)

// normalizeName removes all whitespace and lowercases.
func normalizeName(name string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name))
}

// FindAssignmentByName returns the first assignment whose name equals name
// once whitespace is removed and case is folded.
func FindAssignmentByName(assignments []Assignment, name string) (Assignment, bool) {
	want := normalizeName(name)
	for _, a := range assignments {
		if normalizeName(a.Name) == want {
			return a, true
		}
	}
	return Assignment{}, false
}

// ResolveAssignment is FindAssignmentByName returning a NotFoundError that
// lists the available names.
func ResolveAssignment(assignments []Assignment, name string) (Assignment, error) {
	if a, ok := FindAssignmentByName(assignments, name); ok {
		return a, nil
	}
	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		names = append(names, a.Name)
	}
	return Assignment{}, &errors.NotFoundError{Resource: "assignment", ID: name, Available: names}
}
