/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/odbconv/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the odbconv configuration file",
}

// initConfigCmd represents the config init command
var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file with default values.

Examples:
  odbconv config init
  odbconv config init --config ./odbconv.yaml --force`,
	Args: cobra.NoArgs,
	// The file may not exist yet, so skip the root loader.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			return errors.Newf("config already exists at %s (use --force to overwrite)", configPath)
		}

		if err := config.SaveConfig(config.DefaultConfig(), configPath); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configPath)
		return nil
	},
}

// showConfigCmd represents the config show command
var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *container.Config()
		if cfg.Server.APIKey != "" {
			cfg.Server.APIKey = "<redacted>"
		}

		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initConfigCmd)
	configCmd.AddCommand(showConfigCmd)

	initConfigCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}
