package cmd

import (
	"fmt"
	"soltrace/internal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newChartCmd() *cobra.Command {
	chartCmd := &cobra.Command{
		Use:   "chart <report-file>",
		Short: "Render a chart of the target function from a JSON report",
		Long: `Render a 3x2 grid of charts for one function of a JSON report: iteration count, elapsed time
and state norm per call, and the state norm against elapsed time, iteration count and call index.
The last report in the file is used unless --index is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()

			var (
				output  string
				index   int
				verbose bool
			)

			parseFlags(cmd, map[string]any{
				"output":  &output,
				"index":   &index,
				"verbose": &verbose,
			})

			cmd.SilenceUsage = true

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			function, err := targetFunction(cmd, cfg)
			if err != nil {
				return err
			}

			lines, err := loadReports(cmd, args[0])
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return fmt.Errorf("%s: no reports", args[0])
			}

			if index < 0 {
				index = len(lines) + index
			}
			if index < 0 || index >= len(lines) {
				return fmt.Errorf("%s: report index out of range, file has %d reports", args[0], len(lines))
			}

			report, err := internal.ParseReport(lines[index])
			if err != nil {
				return fmt.Errorf("%s: report %d: %w", args[0], index+1, err)
			}

			if output == "" {
				output = internal.DefaultOutput(cfg.Output.Base, internal.ModePlot)
			}
			if err := internal.RenderTargetChart(report, function, output); err != nil {
				return err
			}
			logger.Debug("Chart rendered", zap.String("function", function), zap.String("file", output))
			if verbose {
				fmt.Fprintf(stderr, "Chart of %s written to %s\n", function, output)
			}

			return nil
		},
	}

	chartCmd.Flags().StringP("output", "o", "", "PNG file to write (default output.png)")
	chartCmd.Flags().IntP("index", "i", -1, "Report to chart, counted from 0; negative values count from the end")
	chartCmd.Flags().StringP("target", "t", internal.DefaultTargetFunction, "Function to chart")
	chartCmd.Flags().BoolP("verbose", "v", false, "Verbose output")

	return chartCmd
}

var chartCmd = newChartCmd()

func init() {
	rootCmd.AddCommand(chartCmd)
}
