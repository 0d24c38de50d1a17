/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/odbconv/pkg/codec"
	"github.com/ssargent/odbconv/pkg/store"
)

var errNotClean = errors.New("container is not clean")

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.odb>",
	Short: "Report on the structure of an ODB container",
	Long: `Check the preamble of an ODB container, identify its frame layout and
count kept, warned and dropped records without writing anything.

Examples:
  odbconv inspect historical_transactions.odb
  odbconv inspect --issues --strict historical_transactions.odb`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showIssues, _ := cmd.Flags().GetBool("issues")
		strict, _ := cmd.Flags().GetBool("strict")

		path := args[0]
		buf, err := store.ReadFile(path, container.Config().Limits.MaxInputBytes)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}

		res, decodeErr := codec.Decode(buf)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "File:\t%s\n", path)
		fmt.Fprintf(w, "Size:\t%d bytes\n", len(buf))
		fmt.Fprintf(w, "Preamble:\t%s\n", okOrMismatch(codec.HasPreamble(buf)))
		fmt.Fprintf(w, "Layout:\t%s\n", codec.DetectLayout(buf))
		fmt.Fprintf(w, "Frames:\t%d\n", res.Report.Total)
		fmt.Fprintf(w, "Kept:\t%d\n", res.Report.Kept)
		fmt.Fprintf(w, "Warnings:\t%d\n", res.Report.Warnings)
		fmt.Fprintf(w, "Dropped:\t%d\n", res.Report.Dropped)
		if decodeErr != nil {
			fmt.Fprintf(w, "Status:\tstopped: %v\n", decodeErr)
		} else {
			fmt.Fprintf(w, "Status:\tcomplete\n")
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if showIssues && len(res.Report.Issues) > 0 {
			w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "FRAME\tOFFSET\tDISPOSITION\tPLAYER\tREASON")
			for _, o := range res.Report.Issues {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%v\n", o.Index, o.Offset, o.Disposition, o.Record.PlayerID, o.Err)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}

		if strict && (decodeErr != nil || !res.Report.Clean()) {
			return errors.Wrapf(errNotClean, "%s", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("issues", false, "List every dropped or warned record")
	inspectCmd.Flags().Bool("strict", false, "Exit non-zero unless every frame decodes cleanly")
}

func okOrMismatch(ok bool) string {
	if ok {
		return "ok"
	}
	return "mismatch"
}
