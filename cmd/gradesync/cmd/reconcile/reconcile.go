// Package reconcile implements the reconcile command.
package reconcile

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/gradesync/internal/appcontext"
	"github.com/agentstation/gradesync/internal/cmd/alerts"
	"github.com/agentstation/gradesync/internal/cmd/globals"
	"github.com/agentstation/gradesync/internal/cmd/output"
	"github.com/agentstation/gradesync/internal/config"
	"github.com/agentstation/gradesync/internal/gradebook"
	"github.com/agentstation/gradesync/pkg/logging"
	"github.com/agentstation/gradesync/pkg/reconcile"
)

type options struct {
	roster    string
	platform  string
	dir       string
	outputDir string
	archive   bool
}

// NewCommand creates the reconcile command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Match roster rows to platform rows by email",
		Long: `Reconcile matches every roster student to the grading-platform export by
normalized email. Platform rows whose names disagree with the roster are
rewritten to the roster's names.

Three files are written: canvas_graded_output.csv (matched students),
unmatched_emails.csv (roster rows without a match), and updated_zybooks.csv
(the platform export with corrected names).

When --roster or --platform is omitted, the first matching *.csv in --dir is used.`,
		Example: `  gradesync reconcile
  gradesync reconcile --roster 2026_roster.csv --platform UCSC_CSE20.csv
  gradesync reconcile --archive -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.roster, "roster", "", "roster export CSV")
	cmd.Flags().StringVar(&opts.platform, "platform", "", "grading-platform export CSV")
	cmd.Flags().StringVar(&opts.dir, "dir", ".", "directory searched for exports")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "directory for output files (default: --dir, or output/ with --archive)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "move the platform export to oldzybooks/ after a successful run")
	cmd.Flags().String(config.FlagName(config.KeyPlatformPattern), gradebook.DefaultPlatformPattern, "glob for platform exports")
	cmd.Flags().String(config.FlagName(config.KeyRosterPattern), "", "glob for roster exports (default: <current year>*.csv)")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, opts *options) error {
	ctx := logging.WithOperation(cmd.Context(), "reconcile")
	logger := logging.FromContext(ctx)

	settings, err := app.Settings(cmd.Flags())
	if err != nil {
		return err
	}

	if err := locateInputs(opts, settings); err != nil {
		return err
	}

	rosterExport, err := gradebook.ReadRoster(opts.roster)
	if err != nil {
		return err
	}
	platformExport, err := gradebook.ReadScores(opts.platform, "")
	if err != nil {
		return err
	}
	logger.Info().
		Str("roster", opts.roster).
		Int("roster_rows", len(rosterExport.Records)).
		Str("platform", opts.platform).
		Int("platform_rows", len(platformExport.Records)).
		Msg("Loaded exports")

	engine := reconcile.New(reconcile.WithLogger(logger))
	result, err := engine.Reconcile(ctx, rosterExport.Records, platformExport.Records)
	if err != nil {
		return err
	}

	outDir := opts.outputDir
	if outDir == "" {
		outDir = opts.dir
		if opts.archive {
			outDir = filepath.Join(opts.dir, gradebook.OutputDir)
		}
	}
	outputs, err := gradebook.WriteOutputs(outDir, rosterExport, platformExport, result)
	if err != nil {
		return err
	}

	if opts.archive {
		moved, err := gradebook.Archive(opts.platform, filepath.Join(opts.dir, gradebook.ArchiveDir))
		if err != nil {
			return err
		}
		logger.Info().Str("path", moved).Msg("Archived platform export")
	}

	logger.Info().Str("stats", result.Stats.String()).Msg("Reconciliation complete")

	flags := &globals.Flags{Output: app.OutputFormat()}
	if err := output.FormatReconcile(cmd.OutOrStdout(), result, outputs, flags); err != nil {
		return err
	}
	if output.IsTable(flags) {
		return summarize(cmd, result, outputs)
	}
	return nil
}

func summarize(cmd *cobra.Command, result *reconcile.Result, outputs *gradebook.Outputs) error {
	level := alerts.LevelSuccess
	if result.Stats.Unmatched > 0 || result.Stats.Conflicts > 0 {
		level = alerts.LevelWarning
	}
	alert := alerts.New(level, result.Stats.String()).
		WithDetails(outputs.Graded, outputs.Unmatched, outputs.Corrected)

	gf, err := globals.Parse(cmd)
	if err != nil {
		return err
	}
	return alerts.NewWriter(cmd.ErrOrStderr(), gf.NoColor).Write(alert)
}

// locateInputs fills in omitted input paths by pattern discovery.
func locateInputs(opts *options, settings *config.Settings) error {
	if opts.roster != "" && opts.platform != "" {
		return nil
	}

	platformPattern := settings.PlatformPattern
	if platformPattern == "" {
		platformPattern = gradebook.DefaultPlatformPattern
	}
	rosterPattern := settings.RosterPattern
	if rosterPattern == "" {
		rosterPattern = gradebook.DefaultRosterPattern(time.Now())
	}

	if opts.platform == "" {
		path, err := gradebook.Locate(opts.dir, platformPattern, "platform export")
		if err != nil {
			return err
		}
		opts.platform = path
	}
	if opts.roster == "" {
		path, err := gradebook.Locate(opts.dir, rosterPattern, "roster export")
		if err != nil {
			return err
		}
		opts.roster = path
	}
	return nil
}
