package appcontext

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/gradesync/internal/config"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	SettingsFunc  func(*pflag.FlagSet) (*config.Settings, error)
	GradebookFunc func(*config.Settings) (Gradebook, error)
	LoggerFunc    func() *zerolog.Logger
	Output        string
	Input         string
	IsInteractive bool
}

// Settings resolves flags over the package defaults unless SettingsFunc is set.
func (m *Mock) Settings(flags *pflag.FlagSet) (*config.Settings, error) {
	if m.SettingsFunc != nil {
		return m.SettingsFunc(flags)
	}
	v := viper.New()
	config.SetDefaults(v)
	return config.Resolve(v, flags)
}

// Gradebook returns a gradebook using the mock function or nil.
func (m *Mock) Gradebook(settings *config.Settings) (Gradebook, error) {
	if m.GradebookFunc != nil {
		return m.GradebookFunc(settings)
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the configured Output field.
func (m *Mock) OutputFormat() string {
	return m.Output
}

// Stdin returns the Input field as a reader.
func (m *Mock) Stdin() io.Reader {
	return strings.NewReader(m.Input)
}

// Interactive returns the IsInteractive field.
func (m *Mock) Interactive() bool {
	return m.IsInteractive
}

// Version returns "dev".
func (m *Mock) Version() string {
	return "dev"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
