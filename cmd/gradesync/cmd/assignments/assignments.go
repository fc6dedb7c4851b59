// Package assignments implements the assignments command.
package assignments

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/gradesync/internal/appcontext"
	"github.com/agentstation/gradesync/internal/cmd/globals"
	"github.com/agentstation/gradesync/internal/cmd/output"
	"github.com/agentstation/gradesync/internal/config"
	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/logging"
)

// NewCommand creates the assignments command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignments [name]",
		GroupID: "core",
		Short:   "List a course's assignments",
		Long: `Assignments lists every assignment in the Canvas course. With a name
argument only the assignment that name resolves to is shown, using the
same whitespace- and case-insensitive match as publish.`,
		Example: `  gradesync assignments --course-id 12345
  gradesync assignments --course-id 12345 "zy lab 2"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithOperation(cmd.Context(), "assignments")

			settings, err := app.Settings(cmd.Flags())
			if err != nil {
				return err
			}
			gb, err := app.Gradebook(settings)
			if err != nil {
				return err
			}

			list, err := gb.Assignments(ctx, settings.CourseID)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				found, err := canvas.ResolveAssignment(list, args[0])
				if err != nil {
					return err
				}
				list = []canvas.Assignment{found}
			}

			logging.FromContext(ctx).Debug().Int("count", len(list)).Msg("Listed assignments")
			return output.FormatAssignments(cmd.OutOrStdout(), list, &globals.Flags{Output: app.OutputFormat()})
		},
	}

	cmd.Flags().String(config.FlagName(config.KeyAccessToken), "", "Canvas API access token (prefer GRADESYNC_ACCESS_TOKEN)")
	cmd.Flags().String(config.FlagName(config.KeyCourseID), "", "Canvas course id")
	cmd.Flags().String(config.FlagName(config.KeyEndpoint), constants.DefaultEndpoint, "Canvas API base URL")
	cmd.Flags().String(config.FlagName(config.KeyAuthScheme), "bearer", "authentication scheme: bearer, header, query, none")

	return cmd
}
