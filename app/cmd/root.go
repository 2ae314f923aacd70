// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"context"
	"fmt"
	"os"
	"soltrace/internal"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "soltrace <data-file> [mode] [output-file]",
		Short: "Timing statistics from solver trace logs",
		Long: `soltrace parses the function start/end markers a linear programming solver writes to a trace log,
pairs them into calls and computes per-function timing statistics (total, min, max, mean, std dev).

Modes:
  print   text statistics on stdout (default, also used for unknown modes)
  printh  CSV with header, appended to the output file
  csv     CSV without header, appended to the output file
  json    one JSON report per line, appended to the output file
  plot    PNG chart of every function
  prom    Prometheus text format metrics

The output file defaults to output.<ext>.`,
		Args:          cobra.RangeArgs(0, 3),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			if len(args) == 0 {
				fmt.Fprint(stdout, cmd.UsageString())
				cmd.SilenceUsage = true
				return internal.ErrMissingArgument
			}

			dataFile := args[0]
			var mode, output string
			if len(args) > 1 {
				mode = args[1]
			}
			if len(args) > 2 {
				output = args[2]
			}

			var verbose bool

			parseFlags(cmd, map[string]any{
				"verbose": &verbose,
			})

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
			collector := internal.NewCollector(format, verbose, nil, timing, logger)
			collector.Stderr = stderr

			// The whole trace is parsed before any output is written
			if err := collector.ProcessFiles([]string{dataFile}, cmd.InOrStdin()); err != nil {
				return err
			}
			timing.Finish()

			emitter := &internal.Emitter{
				Stdout:     stdout,
				OutputBase: cfg.Output.Base,
				Verbose:    verbose,
				Timing:     timing,
				Logger:     logger,
				Collector:  collector,
				Sources:    []string{dataFile},
			}
			written, err := emitter.Emit(collector.Result, mode, output)
			if err != nil {
				return err
			}
			if written != "" && verbose {
				fmt.Fprintf(stderr, "Statistics written to %s\n", written)
			}

			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	addTraceFlags(rootCmd)

	return rootCmd
}

var rootCmd = newRootCmd()

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Commands will be added via their individual init() functions
}
