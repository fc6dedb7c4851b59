package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/policy"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func TestResolveDefaults(t *testing.T) {
	s, err := Resolve(newViper(), nil)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultEndpoint, s.Endpoint)
	assert.Equal(t, policy.Default, s.Policy)
	assert.Equal(t, 1, s.Concurrency)
	assert.InDelta(t, float64(constants.DefaultRateLimit), s.RateLimit, 0)
	assert.False(t, s.DryRun)
}

func TestResolvePrecedence(t *testing.T) {
	t.Setenv("GRADESYNC_COURSE_ID", "from-env")
	t.Setenv("GRADESYNC_POLICY", "direct")

	v := newViper()
	v.Set(KeyAssignmentName, "ZyLab2")

	flags := pflag.NewFlagSet("publish", pflag.ContinueOnError)
	flags.String(FlagName(KeyCourseID), "", "")
	flags.String(FlagName(KeyPolicy), "", "")
	flags.Bool(FlagName(KeyDryRun), false, "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--course-id=12345", "--dry-run"}))

	s, err := Resolve(v, flags)
	require.NoError(t, err)
	assert.Equal(t, "12345", s.CourseID, "flag wins over env")
	assert.Equal(t, "direct", s.Policy, "env wins over unset flag")
	assert.Equal(t, "ZyLab2", s.AssignmentName)
	assert.True(t, s.DryRun)
}

func TestValidateRemote(t *testing.T) {
	valid := Settings{AccessToken: "tok", CourseID: "1", Concurrency: 1, Policy: policy.Default, AuthScheme: "bearer"}
	require.NoError(t, valid.ValidateRemote())

	tests := []struct {
		name   string
		mutate func(*Settings)
		check  func(error) bool
	}{
		{name: "missing token", mutate: func(s *Settings) { s.AccessToken = "" }, check: isConfigError},
		{name: "missing course", mutate: func(s *Settings) { s.CourseID = "" }, check: isConfigError},
		{name: "concurrency too high", mutate: func(s *Settings) { s.Concurrency = 99 }, check: errors.IsValidationError},
		{name: "unknown policy", mutate: func(s *Settings) { s.Policy = "curve" }, check: errors.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.ValidateRemote()
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}

	t.Run("no token needed without auth", func(t *testing.T) {
		s := valid
		s.AccessToken = ""
		s.AuthScheme = "none"
		assert.NoError(t, s.ValidateRemote())
	})
}

func isConfigError(err error) bool {
	var cfgErr *errors.ConfigError
	return errors.As(err, &cfgErr)
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "assignment-name", FlagName(KeyAssignmentName))
}
