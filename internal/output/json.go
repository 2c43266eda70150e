package output

import (
	"encoding/json"
	"io"

	"github.com/rohankatakam/scriptusage/internal/models"
)

// JSONFormatter outputs the whole run for scripts and CI
type JSONFormatter struct{}

func (f *JSONFormatter) Format(run *models.Run, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
