package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/scriptusage/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage scriptusage configuration",
	Long:  `View and initialize scriptusage configuration.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var forceInit bool

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing configuration file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !forceInit {
		fmt.Printf("Configuration file already exists at %s (use --force to overwrite)\n", configPath)
		return nil
	}

	if err := config.Default().Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✅ Created configuration file: %s\n", configPath)
	fmt.Println("\n💡 Next steps:")
	fmt.Println("  1. Point scene.unity_scene at your main scene")
	fmt.Println("  2. Run 'scriptusage check --export'")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	result := cfg.Validate()
	if result.HasErrors() {
		fmt.Fprint(os.Stderr, result.Error())
	} else {
		for _, warn := range result.Warnings {
			fmt.Fprintf(os.Stderr, "⚠️  %s\n", warn)
		}
	}

	_, err = os.Stdout.Write(data)
	return err
}

// Helper functions

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(config.ConfigDir, "config.yaml")
}
