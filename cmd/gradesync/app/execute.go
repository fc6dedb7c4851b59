package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/gradesync/internal/cmd/globals"
	"github.com/agentstation/gradesync/internal/cmd/output"
	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/logging"
)

// Execute runs the gradesync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "gradesync",
		Short:   "Reconcile rosters and publish grades",
		Version: a.version,
		Long: `gradesync reconciles a course roster export with a grading-platform
export by email, correcting name mismatches, and publishes assignment
scores to the Canvas gradebook under a configurable late-credit policy.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	globals.AddFlags(rootCmd)
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.gradesync.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	if a.out != nil {
		rootCmd.SetOut(a.out)
	}

	rootCmd.SetVersionTemplate("gradesync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	flags, err := globals.Parse(cmd)
	if err != nil {
		return err
	}

	if path := mustGetString(cmd, "config"); path != "" {
		cfg, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	a.config.UpdateFromFlags(flags.Verbose, flags.Quiet, flags.NoColor, flags.Output, mustGetString(cmd, "log-level"))

	format, err := output.ParseFormat(a.config.Output)
	if err != nil {
		return err
	}
	a.config.Output = string(output.DetectFormat(string(format)))

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	a.logger.Debug().
		Str("command", cmd.Name()).
		Str("config_file", a.config.ConfigFile).
		Msg("Starting command")

	return nil
}

// ExitOnError prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
