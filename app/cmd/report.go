// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"soltrace/internal"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report <snapshot-file>",
		Short: "Generate a JSON report from a snapshot file",
		Long: `Generate a single line JSON report (the json mode format) from a snapshot file.
The report goes to stdout, or is appended to the output file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			filename := args[0]

			var (
				output  string
				verbose bool
			)

			parseFlags(cmd, map[string]any{
				"output":  &output,
				"verbose": &verbose,
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

			if err := loadDatasets(cmd, seq, []string{filename}, verbose); err != nil {
				return err
			}

			report := internal.GenerateReport(seq.Result)

			// Write the report to the specified output file or stdout
			if output != "" && output != "-" {
				if err := internal.AppendReportFile(output, report); err != nil {
					return err
				}
				if verbose {
					fmt.Fprintf(stderr, "Report appended to %s\n", output)
				}
				return nil
			}

			data, err := internal.MarshalReportLine(report)
			if err != nil {
				return err
			}
			if _, err := stdout.Write(data); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			return nil
		},
	}

	reportCmd.Flags().StringP("output", "o", "", "Report file to append to (optional, defaults to stdout)")
	reportCmd.Flags().StringP("target", "t", internal.DefaultTargetFunction, "Function whose calls number the diagnostic lines")
	reportCmd.Flags().BoolP("verbose", "v", false, "Verbose output")

	return reportCmd
}

var reportCmd = newReportCmd()

func init() {
	rootCmd.AddCommand(reportCmd)
}
