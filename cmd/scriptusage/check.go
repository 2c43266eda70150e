package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rohankatakam/scriptusage/internal/cli"
	"github.com/rohankatakam/scriptusage/internal/config"
	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/ingestion"
	"github.com/rohankatakam/scriptusage/internal/output"
	"github.com/rohankatakam/scriptusage/internal/storage"
)

// checkCmd classifies every script under the target directory
var checkCmd = &cobra.Command{
	Use:   "check [project-root]",
	Short: "Classify scripts as Used or Unused",
	Long: `Scans the target directory for scripts and decides for each one whether it
is used: attached to an object in the scene, a behavior with a Start or
Update hook, or mentioned by another source file in the corpus.

Examples:
  # Check Assets/Scripts against a Unity scene and write a CSV report
  scriptusage check ~/Projects/Game --scene Assets/Scenes/Main.unity --export

  # Only list scripts, no scene, machine-readable output
  scriptusage check --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

var checkFlags struct {
	target      string
	corpus      []string
	scene       string
	snapshot    string
	export      bool
	out         string
	mode        string
	timestamped bool
	db          string
	format      string
	open        bool
	workers     int
	onReadError string
}

func init() {
	f := checkCmd.Flags()
	f.StringVar(&checkFlags.target, "target", "", "directory whose scripts are classified (default: Assets/Scripts)")
	f.StringSliceVar(&checkFlags.corpus, "corpus", nil, "directories searched for references (default: Assets)")
	f.StringVar(&checkFlags.scene, "scene", "", "Unity text scene (*.unity) providing attachments")
	f.StringVar(&checkFlags.snapshot, "snapshot", "", "YAML/JSON scene snapshot providing attachments")
	f.BoolVar(&checkFlags.export, "export", false, "write a CSV report")
	f.StringVar(&checkFlags.out, "out", "", "report output directory (default: Assets)")
	f.StringVar(&checkFlags.mode, "mode", "", "report columns: full or simple")
	f.BoolVar(&checkFlags.timestamped, "timestamped", true, "add a timestamp to the report file name")
	f.StringVar(&checkFlags.db, "db", "", "also store the run in this SQLite database")
	f.StringVar(&checkFlags.format, "format", "", "console output: quiet, standard or json")
	f.BoolVar(&checkFlags.open, "open", false, "open the written report")
	f.IntVar(&checkFlags.workers, "workers", 0, "concurrent file readers and classifiers")
	f.StringVar(&checkFlags.onReadError, "on-read-error", "", "unreadable corpus files: skip or fail")

	checkCmd.MarkFlagsMutuallyExclusive("scene", "snapshot")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	applyCheckFlags(cmd, cfg, args)

	if err := cfg.ValidateOrError(logger); err != nil {
		return err
	}

	level := output.GetDefaultVerbosity()
	if checkFlags.format != "" {
		var err error
		if level, err = output.ParseVerbosity(checkFlags.format); err != nil {
			return err
		}
	}

	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))

	store, err := openStore(cfg.Resolve(cfg.Report.Database), logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	orch := ingestion.NewOrchestrator(cfg, store, logger)
	result, err := orch.Run(ctx)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"type":     errors.GetType(err),
			"severity": errors.GetSeverity(err),
		}).Debug(errors.Detail(err))
		return err
	}

	if err := output.NewFormatter(level).Format(result.Run, os.Stdout); err != nil {
		return fmt.Errorf("failed to print results: %w", err)
	}

	if checkFlags.open && result.Run.ReportPath != "" {
		if err := browser.OpenFile(result.Run.ReportPath); err != nil {
			logger.WithError(err).Warn("Failed to open report")
		}
	}

	return nil
}

// openStore opens the report database at path. Only a fatal failure stops
// the check; otherwise the run goes ahead without history.
func openStore(path string, logger logrus.FieldLogger) (storage.Store, error) {
	if path == "" {
		return nil, nil
	}

	sqlite, err := storage.NewSQLiteStore(path, logger)
	if err != nil {
		serr := errors.StorageError(err, "failed to open report database").WithContext("path", path)
		if errors.IsFatal(serr) {
			return nil, serr
		}
		logger.WithError(err).WithField("path", path).Warn("Continuing without report database")
		return nil, nil
	}
	return sqlite, nil
}

// applyCheckFlags layers command-line values over the loaded configuration.
// Empty values keep the configured setting.
func applyCheckFlags(cmd *cobra.Command, c *config.Config, args []string) {
	if len(args) > 0 {
		config.Override(&c.ProjectRoot, args[0])
	} else if c.ProjectRoot == "." {
		if root, err := cli.DetectProjectRoot("."); err == nil {
			c.ProjectRoot = root
		}
	}

	config.Override(&c.TargetDir, checkFlags.target)
	config.OverrideList(&c.CorpusDirs, checkFlags.corpus)
	config.Override(&c.Report.OutputDir, checkFlags.out)
	config.Override(&c.Report.Mode, checkFlags.mode)
	config.Override(&c.Report.Database, checkFlags.db)
	config.Override(&c.Scan.OnReadError, checkFlags.onReadError)

	// A scene given on the command line replaces whichever source the
	// config file chose
	if checkFlags.scene != "" {
		c.Scene = config.SceneConfig{UnityScene: checkFlags.scene}
	}
	if checkFlags.snapshot != "" {
		c.Scene = config.SceneConfig{Snapshot: checkFlags.snapshot}
	}

	flags := cmd.Flags()
	if flags.Changed("export") {
		c.Report.Export = checkFlags.export
	}
	if flags.Changed("timestamped") {
		c.Report.Timestamped = checkFlags.timestamped
	}
	if flags.Changed("workers") && checkFlags.workers > 0 {
		c.Scan.Workers = checkFlags.workers
	}
	if checkFlags.open {
		c.Report.Export = true
	}
}
