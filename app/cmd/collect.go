// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"soltrace/internal"
	"time"

	"github.com/spf13/cobra"
)

func newCollectCmd() *cobra.Command {
	collectCmd := &cobra.Command{
		Use:   "collect <trace-file> [trace-file2] [trace-file3...]",
		Short: "Parse trace files and save the timing statistics",
		Long: `Parse one or more solver trace files into a single dataset and show the timing statistics.
Optionally save the dataset to a snapshot file (CBOR format) for later view/aggregate.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			var (
				output  string
				date    string
				verbose bool
				quiet   bool
			)

			parseFlags(cmd, map[string]any{
				"output":  &output,
				"date":    &date,
				"verbose": &verbose,
				"quiet":   &quiet,
			})

			if quiet && verbose {
				return fmt.Errorf("conflicting flags: cannot use both --quiet and --verbose")
			}

			var datePtr *time.Time
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD: %w", date, err)
				}
				datePtr = &parsed
			}

			cmd.SilenceUsage = true

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			format, err := traceFormat(cmd, cfg)
			if err != nil {
				return err
			}

			timing := internal.NewTimingStats()
			collector := internal.NewCollector(format, verbose, datePtr, timing, logger)
			collector.Stderr = stderr

			if err := collector.ProcessFiles(args, cmd.InOrStdin()); err != nil {
				return err
			}

			// Write stats to snapshot file only if output is specified
			if output != "" {
				if _, err := internal.WriteSnapshotFile(collector.Result, output); err != nil {
					return fmt.Errorf("failed to write snapshot to %s: %w", output, err)
				}
				if verbose {
					fmt.Fprintf(stderr, "Saved statistics to %s\n", output)
				}
			}

			timing.Finish()

			if quiet {
				return nil
			}
			return internal.OutputCollectorStats(stdout, collector, verbose, args)
		},
	}

	collectCmd.Flags().StringP("output", "o", "", "Snapshot file to save the dataset to (optional, only shows stats if not specified)")
	collectCmd.Flags().StringP("date", "d", "", "Collection date (YYYY-MM-DD), defaults to today")
	collectCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	collectCmd.Flags().BoolP("quiet", "q", false, "Quiet mode")
	addTraceFlags(collectCmd)

	return collectCmd
}

var collectCmd = newCollectCmd()

func init() {
	rootCmd.AddCommand(collectCmd)
}
