package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/gradesync/internal/config"
	"github.com/agentstation/gradesync/pkg/errors"
)

// LegacyConfigFile is read from the working directory when no
// .gradesync config file is found.
const LegacyConfigFile = "config.json"

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Config file
	ConfigFile string

	// Logging configuration. LogLevel is only set by --log-level;
	// EnvLogLevel comes from LOG_LEVEL or the log_level key.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string

	viper *viper.Viper
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later through Settings and UpdateFromFlags)
// 2. Environment variables (GRADESYNC_*)
// 3. .env files
// 4. Config file (path, or .gradesync.* in $HOME or the working directory,
// falling back to ./config.json)
// 5. Defaults
func LoadConfig(path string) (*Config, error) {
	// Load .env files first so viper sees them as environment
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	cfg := &Config{
		Verbose:     v.GetBool("verbose"),
		Quiet:       v.GetBool("quiet"),
		NoColor:     v.GetBool("no_color"),
		Output:      v.GetString("format"),
		ConfigFile:  v.ConfigFileUsed(),
		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", v.GetString("log_level")),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
		viper:       v,
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.NewConfigError("file", "cannot read "+path, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigName(".gradesync")

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return errors.NewConfigError("file", "cannot read config", err)
	}

	if _, statErr := os.Stat(LegacyConfigFile); statErr != nil {
		return nil
	}
	v.SetConfigFile(LegacyConfigFile)
	if err := v.ReadInConfig(); err != nil {
		return errors.NewConfigError("file", "cannot read "+LegacyConfigFile, err)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags so that flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if output != "" {
		c.Output = output
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// Variables already present in the environment are not overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
