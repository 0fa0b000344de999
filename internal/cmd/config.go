package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage pddserve's configuration.

The configuration file is stored at ~/.config/pddserve/config.yaml
(or $XDG_CONFIG_HOME/pddserve/config.yaml if XDG_CONFIG_HOME is set), or
wherever --config points. Environment variables override file settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective config",
	Long: `Print the effective configuration as YAML, after environment overrides.

If no config file exists, shows the default configuration. Provider key
values are never printed.`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	Long:  `Print the path to the configuration file.`,
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long: `Create the default configuration file if it doesn't exist.

This creates a fully-commented configuration file with all default values.
If the file already exists, this command does nothing.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func configPath() string {
	if configFlag != "" {
		return configFlag
	}
	return config.DefaultPath()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Overrides{}, false)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := config.MarshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	term.Print(string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) {
	term.Println(configPath())
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil {
		term.Warn("config file already exists, leaving it unchanged: %s", path)
		return nil
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	term.Printf("Config file: %s\n", path)
	return nil
}
