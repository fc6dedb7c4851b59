// Package matcher finds gradebook export files by name pattern. Patterns are
// shell globs by default; a pattern that looks like a regular expression is
// compiled as one.
package matcher

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/agentstation/gradesync/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches file base names.
type Matcher interface {
	// Match checks if the name matches the pattern.
	Match(name string) bool
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	caseInsensitive bool
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive.
	CaseInsensitive bool
}

// New creates a Matcher for pattern.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	options := &Options{}
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{
		pattern:         pattern,
		patternType:     patternType,
		caseInsensitive: options.CaseInsensitive,
	}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	switch m.patternType {
	case Glob:
		if _, err := filepath.Match(m.glob(), ""); err != nil {
			return nil, errors.NewValidationError("pattern", pattern, fmt.Sprintf("invalid glob pattern: %v", err))
		}
	case Regex:
		expr := pattern
		if m.caseInsensitive && !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.NewValidationError("pattern", pattern, fmt.Sprintf("invalid regex pattern: %v", err))
		}
		m.compiled = compiled
	default:
		return nil, errors.NewValidationError("type", patternType, "unsupported pattern type")
	}
	return m, nil
}

func (m *matcher) glob() string {
	if m.caseInsensitive {
		return strings.ToLower(m.pattern)
	}
	return m.pattern
}

// Match checks if the name matches the pattern.
func (m *matcher) Match(name string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			name = strings.ToLower(name)
		}
		matched, _ := filepath.Match(m.glob(), name)
		return matched
	case Regex:
		return m.compiled.MatchString(name)
	default:
		return false
	}
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string { return m.pattern }

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType { return m.patternType }

// detectPatternType reports Regex for patterns using regex-only syntax.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{"^", "$", `\d`, `\w`, `\s`, "(?i)", "{", "}", "+", "|", "(", ")"} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Find returns the regular files in dir whose base name matches, sorted by name.
func Find(dir string, m Matcher) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}
	var found []string
	for _, e := range entries {
		if e.IsDir() || !m.Match(e.Name()) {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}
	sort.Strings(found)
	return found, nil
}

// FindFirst returns the first file in dir matching pattern. It returns a
// NotFoundError when nothing matches.
func FindFirst(dir, pattern string) (string, error) {
	m, err := New(Auto, pattern)
	if err != nil {
		return "", err
	}
	found, err := Find(dir, m)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", errors.NewNotFoundError("file matching", pattern)
	}
	return found[0], nil
}
