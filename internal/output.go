// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"fmt"
	"io"
	"math"
	"time"
)

// countAsString returns a string with an estimated number, the actual number if known, and the percent difference
// e.g. "3906 (estimated: 3923, diff: +0.44%)"
func countAsString(actual, estimated uint) string {
	if actual > math.MaxInt || estimated > math.MaxInt {
		return fmt.Sprintf("%d (estimated: %d)", actual, estimated)
	}
	if actual != 0 {
		diff := int(estimated) - int(actual)
		percentDiff := (math.Abs(float64(diff)) / float64(actual)) * 100
		sign := '+'
		if diff < 0 {
			sign = '−'
		}
		return fmt.Sprintf("%d (estimated: %d, diff: %c%.2f%%)", actual, estimated, sign, percentDiff)
	}
	return fmt.Sprintf("%d (estimated)", estimated)
}

// TableRow represents a row in the output table with left and right columns
type TableRow struct {
	lhs string
	rhs string
}

// printTable prints a table with dynamic column widths
func printTable(w io.Writer, rows []TableRow) error {
	if len(rows) == 0 {
		return nil
	}

	maxLHSWidth := 0
	for _, row := range rows {
		if len(row.lhs) > maxLHSWidth {
			maxLHSWidth = len(row.lhs)
		}
	}

	for _, row := range rows {
		if row.lhs == "" {
			// separator
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%-*s : %s\n", maxLHSWidth, row.lhs, row.rhs); err != nil {
			return err
		}
	}
	return nil
}

// formatFunctionStats builds one block of rows per function, in first-seen order
func formatFunctionStats(stats TraceDataset) []TableRow {
	var table []TableRow

	table = append(table, TableRow{"Function statistics", ""})
	for _, fn := range stats.Ordered() {
		table = append(table, TableRow{"", ""})
		table = append(table, TableRow{"Function", fn.Name})
		table = append(table, TableRow{"Total elapsed", fn.Stats.Total.String()})
		table = append(table, TableRow{"Calls", fmt.Sprintf("%d", fn.Stats.Calls)})
		table = append(table, TableRow{"Min elapsed", fn.Stats.Min.String()})
		table = append(table, TableRow{"Max elapsed", fn.Stats.Max.String()})
		table = append(table, TableRow{"Mean", fn.Stats.Mean.String()})
		table = append(table, TableRow{"Std dev", fn.Stats.StdDev.String()})
	}

	return table
}

// formatTraceStats builds the rows describing the trace as a whole
func formatTraceStats(stats TraceDataset) []TableRow {
	var table []TableRow

	table = append(table, TableRow{"Trace statistics", ""})
	table = append(table, TableRow{"Date", stats.DateString()})
	table = append(table, TableRow{"Sources", fmt.Sprintf("%d", len(stats.Sources))})
	table = append(table, TableRow{"Functions", fmt.Sprintf("%d", len(stats.Order))})
	table = append(table, TableRow{"Total calls", fmt.Sprintf("%d", stats.CallsCount)})
	table = append(table, TableRow{"State snapshots", fmt.Sprintf("%d", len(stats.States))})
	table = append(table, TableRow{"Distinct states", countAsString(uint(len(stats.extraStates)), uint(stats.StatesCount))})
	table = append(table, TableRow{"Diagnostic lines", fmt.Sprintf("%d", len(stats.Diagnostics))})

	return table
}

// formatCollectorStats adds what only the collector knows about the parsed lines
func formatCollectorStats(counters CollectorCounters) []TableRow {
	var table []TableRow

	table = append(table, TableRow{"Trace lines parsed", fmt.Sprintf("%d", counters.Lines)})
	if counters.Unpaired > 0 {
		table = append(table, TableRow{"Unpaired start lines", fmt.Sprintf("%d", counters.Unpaired)})
	}

	return table
}

// FormatTimingStats formats timing statistics as table rows
func FormatTimingStats(timing *TimingStats, lineCount uint) []TableRow {
	var table []TableRow

	table = append(table, TableRow{"Timing statistics", ""})
	table = append(table, TableRow{"Total execution time", timing.TotalElapsed.Truncate(time.Microsecond).String()})
	if timing.ParsingElapsed > 0 {
		table = append(table, TableRow{"Trace parsing time", timing.ParsingElapsed.Truncate(time.Microsecond).String()})

		if lineCount > 0 {
			linesPerSecond := float64(lineCount) / timing.ParsingElapsed.Seconds()
			table = append(table, TableRow{"Lines processed per second", fmt.Sprintf("%.0f", linesPerSecond)})
		}
	}
	if timing.OutputElapsed > 0 {
		table = append(table, TableRow{"Output time", timing.OutputElapsed.Truncate(time.Microsecond).String()})
	}

	return table
}

// OutputDatasetStats formats and prints the per-function blocks followed by the trace statistics
func OutputDatasetStats(w io.Writer, stats TraceDataset, verbose bool) error {
	return outputDatasetStats(w, stats, verbose, nil)
}

func outputDatasetStats(w io.Writer, stats TraceDataset, verbose bool, extra []TableRow) error {
	if err := printTable(w, formatFunctionStats(stats)); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintln(w)
		for _, fn := range stats.Ordered() {
			fmt.Fprintf(w, "Calls of %s:\n", fn.Name)
			for i, sample := range fn.Stats.Samples {
				fmt.Fprintf(w, "%6d  %s\n", i, sample.String())
			}
		}
	}

	fmt.Fprintln(w)
	return printTable(w, append(formatTraceStats(stats), extra...))
}

// OutputCollectorStats formats and prints dataset, collector and (in verbose mode) timing statistics
func OutputCollectorStats(w io.Writer, collector *Collector, verbose bool, args []string) error {
	if len(args) == 1 {
		fmt.Fprintf(w, "Statistics for %s:\n", args[0])
	} else {
		fmt.Fprintf(w, "Aggregated statistics for %d files:\n", len(args))
	}
	fmt.Fprintln(w)

	if err := outputDatasetStats(w, collector.Result, verbose, formatCollectorStats(collector.Counters())); err != nil {
		return err
	}

	if !verbose {
		return nil
	}

	fmt.Fprintln(w)
	return OutputTimingStats(w, collector.timing, collector.lineCount)
}

// OutputTimingStats formats and prints timing statistics
func OutputTimingStats(w io.Writer, timing *TimingStats, lineCount uint) error {
	if timing == nil {
		return nil
	}

	table := FormatTimingStats(timing, lineCount)
	if err := printTable(w, table); err != nil {
		return fmt.Errorf("failed to print timing statistics: %w", err)
	}
	return nil
}
