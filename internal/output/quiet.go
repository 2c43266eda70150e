package output

import (
	"fmt"
	"io"

	"github.com/rohankatakam/scriptusage/internal/models"
)

// QuietFormatter outputs a one-line summary
type QuietFormatter struct{}

func (f *QuietFormatter) Format(run *models.Run, w io.Writer) error {
	used, unused := run.Counts()

	if unused == 0 {
		_, err := fmt.Fprintf(w, "✅ %d scripts, all used\n", used)
		return err
	}

	_, err := fmt.Fprintf(w, "⚠️  %d scripts, %d unused\n", used+unused, unused)
	return err
}
