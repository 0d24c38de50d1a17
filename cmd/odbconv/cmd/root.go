/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/odbconv/pkg/config"
	"github.com/ssargent/odbconv/pkg/di"
	"github.com/ssargent/odbconv/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "odbconv",
	Short: "odbconv - ODB transaction container converter",
	Long: `odbconv converts player transaction history between CSV and the
length-prefixed binary ODB container used by historical transaction imports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return errors.New("dependency container not initialized")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := logging.New(os.Stderr, logging.Options{
			Level: cfg.Logging.Level,
			File:  cfg.Logging.File,
			App:   "odbconv",
		})
		if err != nil {
			return err
		}

		container.Configure(cfg, logger)
		return nil
	},
}

// loadConfig reads the config file when present and applies environment and
// flag overrides. An explicit --config that does not exist is an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if explicit || config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile, _ = flags.GetString("metrics-textfile")
	}
	if noArchive, _ := flags.GetBool("no-archive"); noArchive {
		cfg.Archive.Enabled = false
	}

	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if container != nil {
		_ = container.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/odbconv/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "Write conversion metrics to this file after each run")
	rootCmd.PersistentFlags().Bool("no-archive", false, "Do not record the run in the run archive")
}
