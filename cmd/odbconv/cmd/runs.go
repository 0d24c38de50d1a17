/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/odbconv/pkg/storage"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse the run archive",
	Long: `Browse archived conversion runs and the records each run dropped or
flagged.`,
}

// listRunsCmd represents the runs list command
var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}

		archive, err := openArchive()
		if err != nil {
			return err
		}

		runs, err := archive.List(limit)
		if err != nil {
			return errors.Wrap(err, "failed to list runs")
		}
		return outputRuns(cmd.OutOrStdout(), format, runs)
	},
}

// showRunCmd represents the runs show command
var showRunCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one archived run and its issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}

		id, err := ksuid.Parse(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid run ID %q", args[0])
		}

		archive, err := openArchive()
		if err != nil {
			return err
		}

		run, err := archive.Get(id)
		if err != nil {
			return err
		}
		return outputRun(cmd.OutOrStdout(), format, run)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)

	runsCmd.PersistentFlags().StringP("format", "f", formatTable, "Output format (table, json)")
	listRunsCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs (0 for all)")
}

func openArchive() (*storage.DefaultStorage, error) {
	archive, err := container.Archive()
	if err != nil {
		return nil, err
	}
	if archive == nil {
		return nil, errors.New("run archive is disabled")
	}
	return archive, nil
}
