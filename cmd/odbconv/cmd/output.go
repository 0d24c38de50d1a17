/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/width"

	"github.com/ssargent/odbconv/pkg/storage"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func validateFormat(format string) error {
	if format != formatTable && format != formatJSON {
		return errors.Newf("unknown output format %q (want table or json)", format)
	}
	return nil
}

// outputRuns displays multiple runs
func outputRuns(w io.Writer, format string, runs []*storage.Run) error {
	if format == formatJSON {
		return outputJSON(w, runs)
	}
	return outputRunsTable(w, runs)
}

// outputRun displays a single run
func outputRun(w io.Writer, format string, run *storage.Run) error {
	if format == formatJSON {
		return outputJSON(w, run)
	}
	return outputRunTable(w, run)
}

// outputRunsTable displays runs in table format
func outputRunsTable(out io.Writer, runs []*storage.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDIRECTION\tKEPT\tDROPPED\tWARNINGS\tSTATUS\tSOURCE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			run.ID,
			formatTime(run.StartedAt),
			run.Direction,
			run.Kept,
			run.Dropped,
			run.Warnings,
			runStatus(run),
			truncateString(run.Source, 40),
		)
	}
	return w.Flush()
}

// outputRunTable displays a single run in table format
func outputRunTable(out io.Writer, run *storage.Run) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "ID:\t%s\n", run.ID)
	fmt.Fprintf(w, "Direction:\t%s\n", run.Direction)
	fmt.Fprintf(w, "Source:\t%s\n", run.Source)
	if run.Destination != "" {
		fmt.Fprintf(w, "Destination:\t%s\n", run.Destination)
	}
	fmt.Fprintf(w, "Started:\t%s\n", formatTime(run.StartedAt))
	fmt.Fprintf(w, "Duration:\t%s\n", run.Duration)
	fmt.Fprintf(w, "Records:\t%d total, %d kept, %d dropped, %d warnings\n", run.Total, run.Kept, run.Dropped, run.Warnings)
	fmt.Fprintf(w, "Container:\t%d bytes\n", run.Bytes)
	fmt.Fprintf(w, "Status:\t%s\n", runStatus(run))
	if run.Failed() {
		fmt.Fprintf(w, "Error:\t%s\n", run.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(run.Issues) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tOFFSET\tDISPOSITION\tPLAYER\tREASON")
		for _, issue := range run.Issues {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				issue.Index, formatOffset(issue.Offset), issue.Disposition, issue.PlayerID, issue.Reason)
		}
		return w.Flush()
	}
	return nil
}

// outputJSON displays any value in JSON format
func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func runStatus(run *storage.Run) string {
	if run.Failed() {
		return "failed"
	}
	return "ok"
}

func formatOffset(offset int) string {
	if offset < 0 {
		return "-"
	}
	return fmt.Sprintf("%d", offset)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// truncateString shortens s to at most maxCols terminal columns, cutting on a
// rune boundary. East Asian wide runes count as two columns.
func truncateString(s string, maxCols int) string {
	if displayWidth(s) <= maxCols {
		return s
	}

	limit := maxCols - len("...")
	cols := 0
	for i, r := range s {
		w := runeWidth(r)
		if cols+w > limit {
			return s[:i] + "..."
		}
		cols += w
	}
	return s
}

func displayWidth(s string) int {
	cols := 0
	for _, r := range s {
		cols += runeWidth(r)
	}
	return cols
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
