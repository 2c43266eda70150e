package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/models"
)

// ReportMode selects the report columns
type ReportMode string

const (
	ReportFull   ReportMode = "full"
	ReportSimple ReportMode = "simple"
)

const (
	fullHeader   = "Name,Kind,AttachedTo,Status,References"
	simpleHeader = "Name,AttachedTo,Status"

	timestampLayout = "20060102_150405"
)

// ReportOptions controls where and how the CSV report is written
type ReportOptions struct {
	Dir         string
	BaseName    string
	Mode        ReportMode
	Timestamped bool
	Now         func() time.Time
}

// ReportHeader returns the header row for mode
func ReportHeader(mode ReportMode) string {
	if mode == ReportSimple {
		return simpleHeader
	}
	return fullHeader
}

// ReportRow formats one usage. Only the references field is quoted;
// quotes inside hit text are already doubled.
func ReportRow(u *models.Usage, mode ReportMode) string {
	if mode == ReportSimple {
		return fmt.Sprintf("%s,%s,%s",
			u.Entity.Name,
			u.AttachedToField(),
			u.Verdict,
		)
	}

	return fmt.Sprintf("%s,%s,%s,%s,\"%s\"",
		u.Entity.Name,
		u.Entity.Kind,
		u.AttachedToField(),
		u.Verdict,
		u.ReferencesField(),
	)
}

// RenderReport returns the header and one row per usage
func RenderReport(run *models.Run, mode ReportMode) []string {
	lines := make([]string, 0, len(run.Usages)+1)
	lines = append(lines, ReportHeader(mode))
	for i := range run.Usages {
		lines = append(lines, ReportRow(&run.Usages[i], mode))
	}
	return lines
}

// ReportFileName returns "<base>_YYYYMMDD_HHMMSS.csv" or "<base>.csv"
func ReportFileName(base string, timestamped bool, now time.Time) string {
	if timestamped {
		return fmt.Sprintf("%s_%s.csv", base, now.Format(timestampLayout))
	}
	return base + ".csv"
}

// WriteReport writes the CSV report and returns its path. The output
// directory is created when missing.
func WriteReport(run *models.Run, opts ReportOptions) (string, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return "", errors.FileSystemErrorf(err, "failed to create report directory %s", opts.Dir)
	}

	path := filepath.Join(opts.Dir, ReportFileName(opts.BaseName, opts.Timestamped, now()))
	content := strings.Join(RenderReport(run, opts.Mode), "\n") + "\n"

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", errors.FileSystemErrorf(err, "failed to write report %s", path)
	}

	return path, nil
}
