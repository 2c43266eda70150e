package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/scriptusage/internal/errors"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// Validate checks the configuration before a run
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	c.validatePaths(result)
	c.validateScene(result)
	c.validateScan(result)
	c.validateReport(result)
	c.validateKinds(result)
	c.validateLog(result)

	return result
}

// ValidateOrError returns a config error when validation fails and logs warnings
func (c *Config) ValidateOrError(logger logrus.FieldLogger) error {
	result := c.Validate()
	for _, warn := range result.Warnings {
		logger.Warn(warn)
	}
	if result.HasErrors() {
		return errors.ConfigError(strings.TrimSpace(result.Error()))
	}
	return nil
}

func (c *Config) validatePaths(result *ValidationResult) {
	if !isDir(c.ProjectRoot) {
		result.AddError("project root %q is not a directory", c.ProjectRoot)
		return
	}

	if c.TargetDir == "" {
		result.AddError("target_dir is required")
	} else if target := c.Resolve(c.TargetDir); !isDir(target) {
		result.AddError("target directory %q does not exist", target)
	}

	if len(c.CorpusPaths()) == 0 {
		result.AddError("corpus_dirs must name at least one directory")
	}
	for _, dir := range c.CorpusPaths() {
		if !isDir(dir) {
			result.AddWarning("corpus directory %q does not exist and will be ignored", dir)
		}
	}

	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		result.AddError("extension %q must start with a dot", c.Extension)
	}
}

func (c *Config) validateScene(result *ValidationResult) {
	if c.Scene.UnityScene != "" && c.Scene.Snapshot != "" {
		result.AddError("scene.unity_scene and scene.snapshot are mutually exclusive")
	}
	for _, path := range []string{c.Scene.UnityScene, c.Scene.Snapshot} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(c.Resolve(path)); err != nil {
			result.AddError("scene source %q is not readable: %v", c.Resolve(path), err)
		}
	}
	if c.Scene.UnityScene == "" && c.Scene.Snapshot == "" {
		result.AddWarning("no scene source configured, every script will report no attachments")
	}
}

func (c *Config) validateScan(result *ValidationResult) {
	switch c.Scan.OnReadError {
	case ReadErrorSkip, ReadErrorFail:
	default:
		result.AddError("scan.on_read_error must be %q or %q, got %q", ReadErrorSkip, ReadErrorFail, c.Scan.OnReadError)
	}
	if c.Scan.Workers < 1 {
		result.AddError("scan.workers must be at least 1, got %d", c.Scan.Workers)
	}
}

func (c *Config) validateReport(result *ValidationResult) {
	switch c.Report.Mode {
	case ReportModeFull, ReportModeSimple:
	default:
		result.AddError("report.mode must be %q or %q, got %q", ReportModeFull, ReportModeSimple, c.Report.Mode)
	}
	if c.Report.Export {
		if c.Report.OutputDir == "" {
			result.AddError("report.output_dir is required when export is enabled")
		}
		if c.Report.BaseName == "" {
			result.AddError("report.base_name is required when export is enabled")
		}
	}
}

func (c *Config) validateKinds(result *ValidationResult) {
	if len(c.Kinds.BehaviorBases) == 0 {
		result.AddWarning("kinds.behavior_bases is empty, no script will be classified as Behavior")
	}
	if len(c.Kinds.DataAssetBases) == 0 {
		result.AddWarning("kinds.data_asset_bases is empty, no script will be classified as DataAsset")
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		result.AddError("log.level: %v", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		result.AddError("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
