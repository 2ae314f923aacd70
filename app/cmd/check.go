package cmd

import (
	"fmt"
	"soltrace/internal"
	"sort"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check <report-file>",
		Short: "Check that a JSON report file is complete",
		Long: `Check that every line of a JSON report file is a JSON object carrying all report keys
(tempi, executions, min, max, std_dev, avg, tempi2, stati, matlab_msg, it_cnts).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			var verbose bool

			parseFlags(cmd, map[string]any{
				"verbose": &verbose,
			})

			cmd.SilenceUsage = true

			lines, err := loadReports(cmd, args[0])
			if err != nil {
				return err
			}

			valid, err := internal.ValidateReports(lines)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			fmt.Fprintf(stdout, "%s: %d valid reports\n", args[0], valid)

			if verbose {
				for i, line := range lines {
					summary := internal.ReportSummary(line)
					names := make([]string, 0, len(summary))
					for name := range summary {
						names = append(names, name)
					}
					sort.Strings(names)

					fmt.Fprintf(stdout, "Report %d:\n", i+1)
					for _, name := range names {
						fmt.Fprintf(stdout, "  %-20s %d calls\n", name, summary[name])
					}
				}
			}

			return nil
		},
	}

	checkCmd.Flags().BoolP("verbose", "v", false, "List the call counts of every report")

	return checkCmd
}

var checkCmd = newCheckCmd()

func init() {
	rootCmd.AddCommand(checkCmd)
}
