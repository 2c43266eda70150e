package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SCRIPTUSAGE_TARGET_DIR
	EnvPrefix = "SCRIPTUSAGE"

	// ConfigDir is the per-project and per-user configuration directory
	ConfigDir = ".scriptusage"

	ReadErrorSkip = "skip"
	ReadErrorFail = "fail"

	ReportModeFull   = "full"
	ReportModeSimple = "simple"
)

// Config holds all configuration settings
type Config struct {
	// Project root; every relative path below is resolved against it
	ProjectRoot string `mapstructure:"project_root" yaml:"project_root"`

	// Directory whose scripts are classified
	TargetDir string `mapstructure:"target_dir" yaml:"target_dir"`

	// Directories searched for references and type declarations
	CorpusDirs []string `mapstructure:"corpus_dirs" yaml:"corpus_dirs"`

	// Source file extension, including the dot
	Extension string `mapstructure:"extension" yaml:"extension"`

	Scene  SceneConfig  `mapstructure:"scene" yaml:"scene"`
	Kinds  KindsConfig  `mapstructure:"kinds" yaml:"kinds"`
	Scan   ScanConfig   `mapstructure:"scan" yaml:"scan"`
	Report ReportConfig `mapstructure:"report" yaml:"report"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type SceneConfig struct {
	UnityScene string `mapstructure:"unity_scene" yaml:"unity_scene"` // *.unity text scene
	Snapshot   string `mapstructure:"snapshot" yaml:"snapshot"`       // exported YAML/JSON snapshot
}

type KindsConfig struct {
	BehaviorBases  []string `mapstructure:"behavior_bases" yaml:"behavior_bases"`
	DataAssetBases []string `mapstructure:"data_asset_bases" yaml:"data_asset_bases"`
}

type ScanConfig struct {
	OnReadError string `mapstructure:"on_read_error" yaml:"on_read_error"` // "skip", "fail"
	Workers     int    `mapstructure:"workers" yaml:"workers"`
}

type ReportConfig struct {
	Export      bool   `mapstructure:"export" yaml:"export"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	Mode        string `mapstructure:"mode" yaml:"mode"` // "full", "simple"
	Timestamped bool   `mapstructure:"timestamped" yaml:"timestamped"`
	BaseName    string `mapstructure:"base_name" yaml:"base_name"`
	Database    string `mapstructure:"database" yaml:"database"` // optional SQLite report
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "text", "json"
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		ProjectRoot: ".",
		TargetDir:   "Assets/Scripts",
		CorpusDirs:  []string{"Assets"},
		Extension:   ".cs",
		Kinds: KindsConfig{
			BehaviorBases:  []string{"MonoBehaviour", "NetworkBehaviour", "UIBehaviour"},
			DataAssetBases: []string{"ScriptableObject", "StateMachineBehaviour", "EditorWindow", "Editor", "ScriptableWizard"},
		},
		Scan: ScanConfig{
			OnReadError: ReadErrorSkip,
			Workers:     8,
		},
		Report: ReportConfig{
			OutputDir:   "Assets",
			Mode:        ReportModeFull,
			Timestamped: true,
			BaseName:    "ScriptUsageReport",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from file, environment and .env files
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(ConfigDir)
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ConfigDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ProjectRoot = expandPath(cfg.ProjectRoot)
	return cfg, nil
}

// setDefaults registers every leaf key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("project_root", cfg.ProjectRoot)
	v.SetDefault("target_dir", cfg.TargetDir)
	v.SetDefault("corpus_dirs", cfg.CorpusDirs)
	v.SetDefault("extension", cfg.Extension)

	v.SetDefault("scene.unity_scene", cfg.Scene.UnityScene)
	v.SetDefault("scene.snapshot", cfg.Scene.Snapshot)

	v.SetDefault("kinds.behavior_bases", cfg.Kinds.BehaviorBases)
	v.SetDefault("kinds.data_asset_bases", cfg.Kinds.DataAssetBases)

	v.SetDefault("scan.on_read_error", cfg.Scan.OnReadError)
	v.SetDefault("scan.workers", cfg.Scan.Workers)

	v.SetDefault("report.export", cfg.Report.Export)
	v.SetDefault("report.output_dir", cfg.Report.OutputDir)
	v.SetDefault("report.mode", cfg.Report.Mode)
	v.SetDefault("report.timestamped", cfg.Report.Timestamped)
	v.SetDefault("report.base_name", cfg.Report.BaseName)
	v.SetDefault("report.database", cfg.Report.Database)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

// loadEnvFiles loads .env files in order of precedence.
// godotenv never overrides variables that are already set.
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		homeEnvFile := filepath.Join(homeDir, ConfigDir, ".env")
		if _, err := os.Stat(homeEnvFile); err == nil {
			_ = godotenv.Load(homeEnvFile)
		}
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Resolve returns the absolute form of path, joined to the project root
// unless it is already absolute
func (c *Config) Resolve(path string) string {
	if path == "" {
		return ""
	}
	path = expandPath(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.ProjectRoot, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// CorpusPaths returns the resolved corpus directories
func (c *Config) CorpusPaths() []string {
	paths := make([]string, 0, len(c.CorpusDirs))
	for _, dir := range c.CorpusDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			paths = append(paths, c.Resolve(dir))
		}
	}
	return paths
}

// Override replaces *dst with value unless value is empty.
// An empty override keeps the configured value, the way a cancelled
// folder picker keeps the previous selection.
func Override(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

// OverrideList is Override for list settings
func OverrideList(dst *[]string, values []string) {
	var kept []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) > 0 {
		*dst = kept
	}
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes the configuration to path as YAML
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
