package output

import (
	"fmt"
	"io"
	"os"

	"github.com/rohankatakam/scriptusage/internal/models"
)

// Formatter defines output formatting interface
type Formatter interface {
	Format(run *models.Run, w io.Writer) error
}

// VerbosityLevel determines output detail
type VerbosityLevel int

const (
	VerbosityQuiet    VerbosityLevel = iota // One-line summary
	VerbosityStandard                       // Per-script table
	VerbosityJSON                           // Machine-readable run
)

// NewFormatter creates appropriate formatter based on level
func NewFormatter(level VerbosityLevel) Formatter {
	switch level {
	case VerbosityQuiet:
		return &QuietFormatter{}
	case VerbosityJSON:
		return &JSONFormatter{}
	default:
		return &StandardFormatter{}
	}
}

// ParseVerbosity maps a --format value to a level
func ParseVerbosity(format string) (VerbosityLevel, error) {
	switch format {
	case "quiet":
		return VerbosityQuiet, nil
	case "", "standard", "text":
		return VerbosityStandard, nil
	case "json":
		return VerbosityJSON, nil
	default:
		return VerbosityStandard, fmt.Errorf("unknown output format %q (want quiet, standard or json)", format)
	}
}

// GetDefaultVerbosity returns appropriate default based on environment
func GetDefaultVerbosity() VerbosityLevel {
	// Pre-commit hook context (GIT_AUTHOR_DATE set by git)
	if os.Getenv("GIT_AUTHOR_DATE") != "" {
		return VerbosityQuiet
	}
	return VerbosityStandard
}
