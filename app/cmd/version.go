package cmd

import (
	"fmt"
	"soltrace/internal"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Long:  `Show the soltrace version and the snapshot file format version it reads and writes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			stdout := cmd.OutOrStdout()

			fmt.Fprintf(stdout, "soltrace %s\n", internal.Version)
			fmt.Fprintf(stdout, "snapshot format %d\n", internal.DatasetVersion)
		},
	}

	return versionCmd
}

var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
