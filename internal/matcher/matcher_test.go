package matcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/gradesync/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		want        PatternType
		wantErr     bool
	}{
		{name: "glob", pattern: "UCSC*.csv", patternType: Glob, want: Glob},
		{name: "regex", pattern: `^2024.*\.csv$`, patternType: Regex, want: Regex},
		{name: "invalid regex", pattern: "(unclosed", patternType: Regex, wantErr: true},
		{name: "invalid glob", pattern: "[unclosed", patternType: Glob, wantErr: true},
		{name: "auto glob", pattern: "*.csv", patternType: Auto, want: Glob},
		{name: "auto regex", pattern: `^\d{4}.*$`, patternType: Auto, want: Regex},
		{name: "unsupported", pattern: "x", patternType: PatternType(42), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Type())
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		opts    *Options
		input   string
		want    bool
	}{
		{pattern: "UCSC*.csv", input: "UCSCCSE20Winter2024_report.csv", want: true},
		{pattern: "UCSC*.csv", input: "ucsc_report.csv", want: false},
		{pattern: "UCSC*.csv", opts: &Options{CaseInsensitive: true}, input: "ucsc_report.csv", want: true},
		{pattern: "2024*.csv", input: "2024-01-15T1200_Grades-CSE_20.csv", want: true},
		{pattern: "2024*.csv", input: "2023-12-01_Grades.csv", want: false},
		{pattern: `^\d{4}-.*\.csv$`, input: "2024-01-15_Grades.csv", want: true},
		{pattern: `^grades\.csv$`, opts: &Options{CaseInsensitive: true}, input: "GRADES.csv", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			m, err := New(Auto, tt.pattern, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.input))
		})
	}
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "unknown", PatternType(9).String())
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"UCSC_b.csv", "UCSC_a.csv", "2024_roster.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "UCSC_dir.csv"), 0o755))

	m, err := New(Glob, "UCSC*.csv")
	require.NoError(t, err)
	found, err := Find(dir, m)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "UCSC_a.csv"), filepath.Join(dir, "UCSC_b.csv")}, found)

	first, err := FindFirst(dir, "2024*.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024_roster.csv"), first)

	_, err = FindFirst(dir, "1999*.csv")
	assert.True(t, errors.IsNotFound(err))

	_, err = Find(filepath.Join(dir, "missing"), m)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}
