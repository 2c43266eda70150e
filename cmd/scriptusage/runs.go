package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/scriptusage/internal/config"
	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/output"
	"github.com/rohankatakam/scriptusage/internal/storage"
)

// runsCmd reads the run history kept in the report database
var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored runs or show one of them",
	Long: `Reads the report database written by 'check --db'.

Without arguments the most recent runs are listed. With a run id the stored
classification is printed the same way 'check' prints it.

Examples:
  scriptusage runs --db .scriptusage/runs.db
  scriptusage runs 3f2c9a1e-5d1b-4c57-9a0e-2b8f0c6d7e41 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

var runsFlags struct {
	db     string
	limit  int
	format string
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsFlags.db, "db", "", "report database (default: report.database)")
	f.IntVar(&runsFlags.limit, "limit", 20, "maximum number of runs to list")
	f.StringVar(&runsFlags.format, "format", "", "run output: quiet, standard or json")
}

func runRuns(cmd *cobra.Command, args []string) error {
	config.Override(&cfg.Report.Database, runsFlags.db)
	if cfg.Report.Database == "" {
		return errors.ConfigError("no report database configured (set report.database or pass --db)")
	}

	// Reading must not create an empty database
	path := cfg.Resolve(cfg.Report.Database)
	if _, err := os.Stat(path); err != nil {
		return errors.FileSystemErrorf(err, "report database %s", path)
	}

	store, err := storage.NewSQLiteStore(path, logger)
	if err != nil {
		return errors.StorageError(err, "failed to open report database")
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 0 {
		return listRuns(ctx, store, runsFlags.limit, os.Stdout)
	}

	level := output.VerbosityStandard
	if runsFlags.format != "" {
		if level, err = output.ParseVerbosity(runsFlags.format); err != nil {
			return err
		}
	}
	return showRun(ctx, store, args[0], output.NewFormatter(level), os.Stdout)
}

func listRuns(ctx context.Context, store storage.Store, limit int, w io.Writer) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return errors.StorageError(err, "failed to list runs")
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs stored")
		return nil
	}

	fmt.Fprintf(w, "📋 Recent runs:\n\n")
	for i, run := range runs {
		fmt.Fprintf(w, "%d. %s\n", i+1, run.ID)
		fmt.Fprintf(w, "   Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "   Target: %s\n", run.TargetRoot)
		if run.ReportPath != "" {
			fmt.Fprintf(w, "   Report: %s\n", run.ReportPath)
		}
	}

	return nil
}

func showRun(ctx context.Context, store storage.Store, runID string, formatter output.Formatter, w io.Writer) error {
	run, err := store.GetRun(ctx, runID)
	if err == storage.ErrNotFound {
		return errors.ValidationErrorf("no stored run %q", runID)
	}
	if err != nil {
		return errors.StorageError(err, "failed to load run")
	}

	return formatter.Format(run, w)
}
