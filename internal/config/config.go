// Package config resolves gradebook settings from flags, environment
// variables, and config files through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/policy"
)

// EnvPrefix namespaces environment variables (GRADESYNC_ACCESS_TOKEN, ...).
const EnvPrefix = "GRADESYNC"

// Setting keys shared by config files, environment variables, and flags.
// Flags use the same names with dashes instead of underscores.
const (
	KeyAccessToken     = "access_token"
	KeyCourseID        = "course_id"
	KeyAssignmentName  = "assignment_name"
	KeyCSVFile         = "csv_file"
	KeyPolicy          = "policy"
	KeyEndpoint        = "endpoint"
	KeyAuthScheme      = "auth_scheme"
	KeyConcurrency     = "concurrency"
	KeyRateLimit       = "rate_limit"
	KeyDryRun          = "dry_run"
	KeyMissingAsZero   = "missing_as_zero"
	KeyPlatformPattern = "platform_pattern"
	KeyRosterPattern   = "roster_pattern"
)

// Settings are the resolved values a command runs with.
type Settings struct {
	AccessToken     string
	CourseID        string
	AssignmentName  string
	CSVFile         string
	Policy          string
	Endpoint        string
	AuthScheme      string
	Concurrency     int
	RateLimit       float64
	DryRun          bool
	MissingAsZero   bool
	PlatformPattern string
	RosterPattern   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEndpoint, constants.DefaultEndpoint)
	v.SetDefault(KeyPolicy, policy.Default)
	v.SetDefault(KeyAuthScheme, "bearer")
	v.SetDefault(KeyConcurrency, 1)
	v.SetDefault(KeyRateLimit, constants.DefaultRateLimit)
}

// FlagName returns the command-line flag name for a setting key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Resolve reads every setting from v, letting flags that were set on the
// command line win over environment and config file values.
func Resolve(v *viper.Viper, flags *pflag.FlagSet) (*Settings, error) {
	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isKey(key) || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, errors.NewConfigError("flags", "bind failed", bindErr)
		}
	}

	return &Settings{
		AccessToken:     strings.TrimSpace(v.GetString(KeyAccessToken)),
		CourseID:        strings.TrimSpace(v.GetString(KeyCourseID)),
		AssignmentName:  v.GetString(KeyAssignmentName),
		CSVFile:         v.GetString(KeyCSVFile),
		Policy:          v.GetString(KeyPolicy),
		Endpoint:        v.GetString(KeyEndpoint),
		AuthScheme:      v.GetString(KeyAuthScheme),
		Concurrency:     v.GetInt(KeyConcurrency),
		RateLimit:       v.GetFloat64(KeyRateLimit),
		DryRun:          v.GetBool(KeyDryRun),
		MissingAsZero:   v.GetBool(KeyMissingAsZero),
		PlatformPattern: v.GetString(KeyPlatformPattern),
		RosterPattern:   v.GetString(KeyRosterPattern),
	}, nil
}

var keys = map[string]bool{
	KeyAccessToken: true, KeyCourseID: true, KeyAssignmentName: true, KeyCSVFile: true,
	KeyPolicy: true, KeyEndpoint: true, KeyAuthScheme: true, KeyConcurrency: true,
	KeyRateLimit: true, KeyDryRun: true, KeyMissingAsZero: true,
	KeyPlatformPattern: true, KeyRosterPattern: true,
}

func isKey(key string) bool {
	return keys[key]
}

// ValidateRemote checks the settings needed to talk to the gradebook API.
func (s *Settings) ValidateRemote() error {
	if s.AccessToken == "" && s.AuthScheme != "none" {
		return errors.NewConfigError("gradebook", "access token required (set "+EnvPrefix+"_ACCESS_TOKEN or access_token)", nil)
	}
	if s.CourseID == "" {
		return errors.NewConfigError("gradebook", "course id required (set "+EnvPrefix+"_COURSE_ID or course_id)", nil)
	}
	if s.Concurrency < 1 || s.Concurrency > constants.MaxConcurrency {
		return errors.NewValidationError(KeyConcurrency, s.Concurrency, fmt.Sprintf("must be between 1 and %d", constants.MaxConcurrency))
	}
	if _, err := policy.Lookup(s.Policy); err != nil {
		return err
	}
	return nil
}
