// Package publish implements the publish command.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/gradesync/internal/appcontext"
	"github.com/agentstation/gradesync/internal/cmd/alerts"
	"github.com/agentstation/gradesync/internal/cmd/globals"
	"github.com/agentstation/gradesync/internal/cmd/output"
	"github.com/agentstation/gradesync/internal/config"
	"github.com/agentstation/gradesync/internal/gradebook"
	"github.com/agentstation/gradesync/internal/prompt"
	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/constants"
	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/logging"
	"github.com/agentstation/gradesync/pkg/policy"
	"github.com/agentstation/gradesync/pkg/publish"
)

// NewCommand creates the publish command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "publish",
		GroupID: "core",
		Short:   "Publish assignment scores to the Canvas gradebook",
		Long: `Publish reads an assignment's scores from a grading-platform export and
writes them to every enrolled student's Canvas submission, as decided by
the selected policy:

` + policyHelp() + `

Students are matched to export rows by exact first and last name. Use
reconcile first so that the export carries roster names.`,
		Example: `  gradesync publish --course-id 12345 --assignment-name "ZyLab 2" --csv-file updated_zybooks.csv
  gradesync publish --policy proportional-credit --dry-run
  GRADESYNC_ACCESS_TOKEN=... gradesync publish -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	flags := cmd.Flags()
	flags.String(config.FlagName(config.KeyAccessToken), "", "Canvas API access token (prefer GRADESYNC_ACCESS_TOKEN)")
	flags.String(config.FlagName(config.KeyCourseID), "", "Canvas course id")
	flags.String(config.FlagName(config.KeyAssignmentName), "", "assignment name; prompted for when omitted on a terminal")
	flags.String(config.FlagName(config.KeyCSVFile), "", "grading-platform export with the assignment's (points) column (default: output/"+gradebook.CorrectedFile+", else the first platform export)")
	flags.String(config.FlagName(config.KeyPolicy), policy.Default, "grade policy: "+strings.Join(policy.Names(), ", "))
	flags.String(config.FlagName(config.KeyEndpoint), constants.DefaultEndpoint, "Canvas API base URL")
	flags.String(config.FlagName(config.KeyAuthScheme), "bearer", "authentication scheme: bearer, header, query, none")
	flags.Int(config.FlagName(config.KeyConcurrency), 1, fmt.Sprintf("students processed in parallel (1-%d)", constants.MaxConcurrency))
	flags.Float64(config.FlagName(config.KeyRateLimit), constants.DefaultRateLimit, "maximum API requests per second (0 for unlimited)")
	flags.Bool(config.FlagName(config.KeyDryRun), false, "decide grades without writing them")
	flags.Bool(config.FlagName(config.KeyMissingAsZero), false, "treat students absent from the export as scoring zero")

	return cmd
}

func policyHelp() string {
	var b strings.Builder
	for i, name := range policy.Names() {
		p, _ := policy.Lookup(name)
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %-20s %s", name, p.Description())
	}
	return b.String()
}

func run(cmd *cobra.Command, app appcontext.Interface) error {
	ctx := logging.WithOperation(cmd.Context(), "publish")
	logger := logging.FromContext(ctx)

	settings, err := app.Settings(cmd.Flags())
	if err != nil {
		return err
	}
	if err := resolveAssignmentName(cmd, app, settings); err != nil {
		return err
	}
	if settings.CSVFile == "" {
		settings.CSVFile, err = gradebook.LocateScores(".", platformPattern(settings))
		if err != nil {
			return err
		}
	}

	pol, err := policy.Lookup(settings.Policy)
	if err != nil {
		return err
	}

	// Read the export before touching the API so a bad file fails fast
	export, err := gradebook.ReadScores(settings.CSVFile, settings.AssignmentName)
	if err != nil {
		return err
	}
	lookup := publish.NewGradeLookup(export.Records, logger)
	logger.Info().
		Str("file", settings.CSVFile).
		Int("scores", lookup.Len()).
		Msg("Loaded grade export")

	gb, err := app.Gradebook(settings)
	if err != nil {
		return err
	}

	ctx = logging.WithCourse(ctx, settings.CourseID)
	assignment, students, err := loadCourse(ctx, gb, settings)
	if err != nil {
		return err
	}

	publisher := publish.New(gb,
		publish.WithPolicy(pol),
		publish.WithLogger(logger),
		publish.WithDryRun(settings.DryRun),
		publish.WithConcurrency(settings.Concurrency),
		publish.WithMissingCandidateAsZero(settings.MissingAsZero),
	)

	report, err := publisher.Publish(ctx, settings.CourseID, assignment, students, lookup)
	if report != nil {
		logReport(logger, report)
		if fmtErr := render(cmd, app, report); fmtErr != nil && err == nil {
			err = fmtErr
		}
	}
	return err
}

func render(cmd *cobra.Command, app appcontext.Interface, report *publish.Report) error {
	flags := &globals.Flags{Output: app.OutputFormat()}
	if err := output.FormatReport(cmd.OutOrStdout(), report, flags); err != nil {
		return err
	}
	if !output.IsTable(flags) {
		return nil
	}

	level := alerts.LevelSuccess
	switch {
	case report.Failed > 0:
		level = alerts.LevelError
	case report.NoCurrentGrade > 0 || report.NoCandidate > 0:
		level = alerts.LevelWarning
	}
	gf, err := globals.Parse(cmd)
	if err != nil {
		return err
	}
	return alerts.NewWriter(cmd.ErrOrStderr(), gf.NoColor).Write(alerts.New(level, report.String()))
}

func platformPattern(settings *config.Settings) string {
	if settings.PlatformPattern != "" {
		return settings.PlatformPattern
	}
	return gradebook.DefaultPlatformPattern
}

// resolveAssignmentName asks for the assignment on a terminal unless the
// flag was given. A name from env or a config file becomes the default answer.
func resolveAssignmentName(cmd *cobra.Command, app appcontext.Interface, settings *config.Settings) error {
	configured := strings.TrimSpace(settings.AssignmentName)
	if configured != "" && cmd.Flags().Changed(config.FlagName(config.KeyAssignmentName)) {
		return nil
	}
	if !app.Interactive() {
		if configured != "" {
			return nil
		}
		return errors.NewConfigError("publish", "assignment name required (--assignment-name or "+config.KeyAssignmentName+")", nil)
	}

	const label = "Assignment name"
	var (
		name string
		err  error
	)
	if configured != "" {
		name, err = prompt.Ask(app.Stdin(), cmd.ErrOrStderr(), label, configured)
	} else {
		name, err = prompt.Required(app.Stdin(), cmd.ErrOrStderr(), label)
	}
	if err != nil {
		return err
	}
	settings.AssignmentName = name
	return nil
}

func loadCourse(ctx context.Context, gb appcontext.Gradebook, settings *config.Settings) (canvas.Assignment, []canvas.Student, error) {
	assignments, err := gb.Assignments(ctx, settings.CourseID)
	if err != nil {
		return canvas.Assignment{}, nil, err
	}
	assignment, err := canvas.ResolveAssignment(assignments, settings.AssignmentName)
	if err != nil {
		return canvas.Assignment{}, nil, err
	}

	students, err := gb.Students(ctx, settings.CourseID)
	if err != nil {
		return canvas.Assignment{}, nil, err
	}
	logging.FromContext(ctx).Info().
		Int64("assignment_id", assignment.ID).
		Str("assignment_name", assignment.Name).
		Int("students", len(students)).
		Msg("Loaded course")
	return assignment, students, nil
}

func logReport(logger *zerolog.Logger, report *publish.Report) {
	event := logger.Info()
	if report.Failed > 0 {
		event = logger.Warn()
	}
	event.
		Str("policy", report.Policy).
		Bool("dry_run", report.DryRun).
		Int("failed", report.Failed).
		Msg(report.String())
}
