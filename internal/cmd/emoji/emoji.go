// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols used in report tables and summaries.
const (
	// Success marks a written grade or a clean match.
	Success = "✓"

	// Error marks a failed write or an unmatched roster row.
	Error = "✗"

	// Warning marks a student skipped for missing data or a corrected name.
	Warning = "!"

	// Optional marks a student left unchanged.
	Optional = "-"

	// Info prefixes informational messages.
	Info = "i"
)
