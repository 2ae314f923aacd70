// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"soltrace/internal"

	"github.com/spf13/cobra"
)

func newViewCmd() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view <snapshot-file>",
		Short: "View statistics from a snapshot file",
		Long: `View timing statistics from a previously saved snapshot file, in any of the output modes.
Several datasets appended to the same file are merged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()

			var (
				verbose bool
				mode    string
				output  string
			)

			parseFlags(cmd, map[string]any{
				"verbose": &verbose,
				"mode":    &mode,
				"output":  &output,
			})

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

			seq := internal.NewDatasetSequence(target, nil)

			if err := loadDatasets(cmd, seq, args, verbose); err != nil {
				return err
			}

			emitter := &internal.Emitter{
				Stdout:     cmd.OutOrStdout(),
				OutputBase: cfg.Output.Base,
				Verbose:    verbose,
				Logger:     logger,
			}
			written, err := emitter.Emit(seq.Result, mode, output)
			if err != nil {
				return err
			}
			if written != "" && verbose {
				fmt.Fprintf(stderr, "Statistics written to %s\n", written)
			}

			return nil
		},
	}

	viewCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	viewCmd.Flags().StringP("mode", "m", string(internal.ModePrint), "Output mode (print, printh, csv, json, plot, prom)")
	viewCmd.Flags().StringP("output", "o", "", "Output file for the file modes (default output.<ext>)")
	viewCmd.Flags().StringP("target", "t", internal.DefaultTargetFunction, "Function whose calls number the diagnostic lines")

	return viewCmd
}

var viewCmd = newViewCmd()

func init() {
	rootCmd.AddCommand(viewCmd)
}
