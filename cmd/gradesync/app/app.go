// Package app provides the application context and dependency management
// for the gradesync CLI. It centralizes configuration, logging, and
// construction of the gradebook API client.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/gradesync/internal/appcontext"
	"github.com/agentstation/gradesync/internal/config"
	"github.com/agentstation/gradesync/internal/prompt"
	"github.com/agentstation/gradesync/internal/transport"
	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/constants"
)

// App represents the gradesync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	stdin       io.Reader
	interactive bool
	out         io.Writer

	// clients built so far, closed on shutdown
	mu      sync.Mutex
	clients []*transport.Client
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations; functional options
// may replace any of it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:     version,
		commit:      commit,
		date:        date,
		builtBy:     builtBy,
		stdin:       os.Stdin,
		interactive: prompt.Interactive(os.Stdin),
	}

	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// Stdin returns the reader used for interactive prompts.
func (a *App) Stdin() io.Reader {
	return a.stdin
}

// Interactive reports whether stdin is a terminal.
func (a *App) Interactive() bool {
	return a.interactive
}

// Settings resolves gradebook settings; flags set on the command line win.
func (a *App) Settings(flags *pflag.FlagSet) (*config.Settings, error) {
	if a.config.viper == nil {
		a.config.viper = viper.New()
		config.SetDefaults(a.config.viper)
	}
	return config.Resolve(a.config.viper, flags)
}

// Gradebook builds a Canvas API client from settings.
func (a *App) Gradebook(settings *config.Settings) (appcontext.Gradebook, error) {
	if err := settings.ValidateRemote(); err != nil {
		return nil, err
	}

	client := transport.New(
		transport.ForScheme(settings.AuthScheme),
		settings.AccessToken,
		transport.WithRateLimit(settings.RateLimit, constants.BurstSize),
		transport.WithLogger(a.logger),
	)

	a.mu.Lock()
	a.clients = append(a.clients, client)
	a.mu.Unlock()

	a.logger.Debug().
		Str("endpoint", settings.Endpoint).
		Str("course_id", settings.CourseID).
		Float64("rate_limit", settings.RateLimit).
		Msg("Created gradebook client")

	return canvas.New(settings.Endpoint, client), nil
}

// Shutdown releases idle connections held by clients created during the run.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	clients := a.clients
	a.clients = nil
	a.mu.Unlock()

	for _, c := range clients {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.CloseIdleConnections()
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStdin replaces the prompt input and marks it interactive.
func WithStdin(r io.Reader, interactive bool) Option {
	return func(a *App) error {
		a.stdin = r
		a.interactive = interactive
		return nil
	}
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

var _ appcontext.Interface = (*App)(nil)
