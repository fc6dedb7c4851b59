package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/gradesync/cmd/gradesync/cmd/assignments"
	"github.com/agentstation/gradesync/cmd/gradesync/cmd/publish"
	"github.com/agentstation/gradesync/cmd/gradesync/cmd/reconcile"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(reconcile.NewCommand(a))
	rootCmd.AddCommand(publish.NewCommand(a))
	rootCmd.AddCommand(assignments.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("gradesync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
