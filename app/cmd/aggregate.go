// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"soltrace/internal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAggregateCmd() *cobra.Command {
	aggregateCmd := &cobra.Command{
		Use:   "aggregate <snapshot-file1> <snapshot-file2> [snapshot-file3...]",
		Short: "Aggregate multiple snapshot files into combined statistics",
		Long: `Aggregate the timing statistics of multiple snapshot files into a single combined dataset.
Samples and states are concatenated in argument order.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			timing := internal.NewTimingStats()

			var (
				verbose bool
				quiet   bool
				output  string
				mode    string
				emitTo  string
			)

			parseFlags(cmd, map[string]any{
				"verbose":     &verbose,
				"quiet":       &quiet,
				"output":      &output,
				"mode":        &mode,
				"mode-output": &emitTo,
			})

			// Quiet and verbose flags are mutually exclusive
			if quiet && verbose {
				fmt.Fprintln(stderr, "Can't be both --quiet and --verbose at the same time")
				cmd.SilenceUsage = true
				return fmt.Errorf("conflicting flags: cannot use both --quiet and --verbose")
			}

			cmd.SilenceUsage = true

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			target, err := targetFunction(cmd, cfg)
			if err != nil {
				return err
			}

			// Load all provided CBOR files
			var datasets []internal.TraceDataset
			timing.StartParsing()
			for _, filename := range args {
				seq := internal.NewDatasetSequence(target, nil)
				if err := loadDatasets(cmd, seq, []string{filename}, verbose); err != nil {
					return err
				}
				datasets = append(datasets, seq.Result)
			}

			aggregated, err := internal.AggregateDatasets(datasets, target)
			if err != nil {
				return fmt.Errorf("failed to aggregate datasets: %w", err)
			}
			timing.StopParsing()

			// Save the aggregated dataset to output file if specified
			if output != "" {
				outFilename, err := internal.WriteSnapshotFile(aggregated, output)
				if err != nil {
					return fmt.Errorf("failed to write aggregated dataset to %s: %w", output, err)
				}
				if verbose {
					fmt.Fprintf(stderr, "Aggregated dataset saved to %s\n", outFilename)
				}
			}

			// File modes write even in quiet mode, only stdout is silenced
			outputMode, known := internal.ParseMode(mode)
			if !known {
				logger.Debug("Unknown output mode, printing instead", zap.String("mode", mode))
			}
			if outputMode.WritesFile() {
				emitter := &internal.Emitter{
					Stdout:     stdout,
					OutputBase: cfg.Output.Base,
					Verbose:    verbose,
					Timing:     timing,
					Logger:     logger,
				}
				written, err := emitter.Emit(aggregated, mode, emitTo)
				if err != nil {
					return err
				}
				if written != "" && verbose {
					fmt.Fprintf(stderr, "Statistics written to %s\n", written)
				}
				return nil
			}

			if quiet {
				return nil
			}

			fmt.Fprintf(stdout, "Aggregated statistics for %d files:\n", len(args))
			fmt.Fprintln(stdout)

			// Finish timing and print statistics
			timing.Finish()

			if err := internal.OutputDatasetStats(stdout, aggregated, verbose); err != nil {
				return fmt.Errorf("failed to output dataset stats: %w", err)
			}

			if verbose {
				fmt.Fprintln(stdout)
				if err := internal.OutputTimingStats(stdout, timing, 0); err != nil {
					return err
				}
			}

			return nil
		},
	}

	aggregateCmd.Flags().StringP("output", "o", "", "Snapshot file to save the aggregated dataset to (optional)")
	aggregateCmd.Flags().StringP("mode", "m", "", "Output mode for the aggregated statistics (print, printh, csv, json, plot, prom)")
	aggregateCmd.Flags().String("mode-output", "", "Output file for the file modes (default output.<ext>)")
	aggregateCmd.Flags().StringP("target", "t", internal.DefaultTargetFunction, "Function whose calls number the diagnostic lines")
	aggregateCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	aggregateCmd.Flags().BoolP("quiet", "q", false, "Quiet mode")

	return aggregateCmd
}

var aggregateCmd = newAggregateCmd()

func init() {
	rootCmd.AddCommand(aggregateCmd)
}
