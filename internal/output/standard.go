package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/rohankatakam/scriptusage/internal/models"
)

var (
	usedColor      = color.New(color.FgGreen)
	unusedColor    = color.New(color.FgRed, color.Bold)
	collisionColor = color.New(color.FgYellow)
)

// StandardFormatter outputs one row per script (default)
type StandardFormatter struct{}

func (f *StandardFormatter) Format(run *models.Run, w io.Writer) error {
	used, unused := run.Counts()

	fmt.Fprintf(w, "🔍 Script usage: %s\n", run.TargetRoot)
	fmt.Fprintf(w, "Scripts: %d (%d used, %d unused)\n\n", used+unused, used, unused)

	if len(run.Usages) > 0 {
		// Status is the last column so color codes don't skew alignment
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tATTACHED TO\tREFS\tSTATUS")
		for i := range run.Usages {
			u := &run.Usages[i]
			name := u.Entity.Name
			if u.Collision {
				name += "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				name,
				u.Entity.Kind,
				u.AttachedToField(),
				len(u.References),
				statusText(u.Verdict),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if names := run.Collisions(); len(names) > 0 {
		collisionColor.Fprintf(w, "* Name shared by several scripts: %s\n", strings.Join(names, ", "))
		fmt.Fprintf(w, "  Their attachments and references cannot be told apart.\n\n")
	}

	if len(run.Warnings) > 0 {
		fmt.Fprintf(w, "⚠️  Warnings (%d):\n", len(run.Warnings))
		for i, warn := range run.Warnings {
			if i < 10 { // Only show first 10 warnings
				fmt.Fprintf(w, "  - %s\n", warn)
			}
		}
		if len(run.Warnings) > 10 {
			fmt.Fprintf(w, "  ... and %d more\n", len(run.Warnings)-10)
		}
		fmt.Fprintln(w)
	}

	if run.ReportPath != "" {
		fmt.Fprintf(w, "✅ Report written: %s\n", run.ReportPath)
	}

	return nil
}

func statusText(v models.Verdict) string {
	if v == models.VerdictUsed {
		return usedColor.Sprint(v.String())
	}
	return unusedColor.Sprint(v.String())
}
