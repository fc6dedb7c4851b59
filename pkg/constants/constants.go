// Package constants provides shared constants used throughout the gradesync codebase.
// This includes timeouts, retry limits, file permissions, and the gradebook API
// paging values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single gradebook API request
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for a whole CLI run
	CommandTimeout = 30 * time.Minute

	// ShutdownTimeout bounds cleanup after a failed or interrupted run
	ShutdownTimeout = 5 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the number of extra attempts for transient API failures
	MaxRetries = 3

	// DefaultPageSize is the per_page value sent to paginated list endpoints
	DefaultPageSize = 100

	// DefaultRateLimit is the default request rate against the gradebook API (requests/second)
	DefaultRateLimit = 10

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 5

	// MaxConcurrency caps parallel per-student calls during publishing
	MaxConcurrency = 8

	// MaxErrorBodyBytes bounds how much of an error response body is kept
	MaxErrorBodyBytes = 4096
)

// Gradebook defaults
const (
	// DefaultEndpoint is the Canvas API base URL used when none is configured
	DefaultEndpoint = "https://canvas.ucsc.edu/api/v1"

	// LateOverride is how far back a threshold-override late grade is dated (4 days)
	LateOverride = 4 * 24 * time.Hour
)
