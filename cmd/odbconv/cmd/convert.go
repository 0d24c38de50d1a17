/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/odbconv/pkg/convert"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <src.csv> <dst.odb>",
	Short: "Convert a transaction CSV into an ODB container",
	Long: `Convert a transaction CSV into an ODB container.

The CSV needs a header row naming playerID, date, type, fromTeam and toTeam.
Rows with malformed dates or oversized payloads are skipped and reported.

Example:
  odbconv encode transactions.csv historical_transactions.odb`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		converter, err := container.Converter()
		if err != nil {
			return err
		}
		defer exportMetrics()

		sum, err := converter.EncodeFile(args[0], args[1])
		if err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), "Encoded", sum)
		return nil
	},
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <src.odb> <dst.csv>",
	Short: "Convert an ODB container into a transaction CSV",
	Long: `Convert an ODB container into a transaction CSV.

Records with unparseable dates are kept with an empty date and reported.
A corrupt or truncated container fails without writing the destination.

Example:
  odbconv decode historical_transactions.odb transactions.csv`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		converter, err := container.Converter()
		if err != nil {
			return err
		}
		defer exportMetrics()

		sum, err := converter.DecodeFile(args[0], args[1])
		if err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), "Decoded", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
}

func printSummary(w io.Writer, verb string, sum *convert.Summary) {
	r := sum.Report
	fmt.Fprintf(w, "%s %d of %d records: %s -> %s (%d container bytes)\n",
		verb, r.Kept, r.Total, sum.Source, sum.Destination, sum.Bytes)
	if r.Dropped > 0 || r.Warnings > 0 {
		fmt.Fprintf(w, "Dropped: %d, warnings: %d\n", r.Dropped, r.Warnings)
	}
	if sum.RunID != ksuid.Nil {
		fmt.Fprintf(w, "Run: %s\n", sum.RunID)
	}
}

// exportMetrics writes the metrics textfile when one is configured. Failures
// are logged and never fail the conversion.
func exportMetrics() {
	path := container.Config().Metrics.Textfile
	if path == "" {
		return
	}
	if err := container.Metrics().WriteTextfile(path); err != nil {
		logger := container.Logger()
		logger.Warn().Err(err).Str("path", path).Msg("failed to write metrics textfile")
	}
}
