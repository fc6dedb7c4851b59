// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/agentstation/gradesync/internal/config"
	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/publish"
)

// Gradebook is the remote gradebook surface the commands use.
// *canvas.Client implements it.
type Gradebook interface {
	publish.Gradebook
	Students(ctx context.Context, courseID string) ([]canvas.Student, error)
	Assignments(ctx context.Context, courseID string) ([]canvas.Assignment, error)
}

var _ Gradebook = (*canvas.Client)(nil)

// Interface defines the application context that commands need.
// The App struct from cmd/gradesync/app implements it; tests use Mock.
type Interface interface {
	// Settings resolves configuration, with flags set on the command line winning.
	Settings(flags *pflag.FlagSet) (*config.Settings, error)

	// Gradebook builds an API client for the given settings.
	Gradebook(settings *config.Settings) (Gradebook, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// Stdin is where interactive answers are read from.
	Stdin() io.Reader

	// Interactive reports whether prompting the operator is allowed.
	Interactive() bool

	// Version returns the application version string.
	Version() string
}
