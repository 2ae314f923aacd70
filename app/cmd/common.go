// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"os"
	"soltrace/internal"
	"soltrace/internal/config"
	"soltrace/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// parseFlags parses command flags in a table-driven manner
func parseFlags(cmd *cobra.Command, flags map[string]any) {
	for name, dest := range flags {
		var err error
		switch v := dest.(type) {
		case *int:
			*v, err = cmd.Flags().GetInt(name)
		case *bool:
			*v, err = cmd.Flags().GetBool(name)
		case *string:
			*v, err = cmd.Flags().GetString(name)
		case *[]string:
			*v, err = cmd.Flags().GetStringSlice(name)
		default:
			fmt.Fprintf(os.Stderr, "Unsupported flag type for %s\n", name)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}
}

// flagString returns the value of a flag that may not be defined on cmd, e.g. a persistent root flag when the
// command runs on its own.
func flagString(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// setup loads the configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagString(cmd, "config"))
	if err != nil {
		return nil, nil, err
	}

	if level := flagString(cmd, "log-level"); level != "" {
		cfg.Log.Level = level
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// traceFormat applies the --target and --pairing flags, where the command has them, over the configuration.
func traceFormat(cmd *cobra.Command, cfg *config.Config) (internal.TraceFormat, error) {
	format := cfg.Trace.Format()

	if f := cmd.Flags().Lookup("target"); f != nil && f.Changed {
		if f.Value.String() == "" {
			return format, config.ErrEmptyTargetFunction
		}
		format.TargetFunction = f.Value.String()
	}
	if f := cmd.Flags().Lookup("pairing"); f != nil && f.Changed {
		pairing, err := internal.ParsePairingMode(f.Value.String())
		if err != nil {
			return format, err
		}
		format.Pairing = pairing
	}
	if format.Pairing == internal.PairByName && format.StartMarker == "" {
		return format, config.ErrEmptyStartMarker
	}
	return format, nil
}

// addTraceFlags adds the flags that override the trace section of the configuration.
func addTraceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", internal.DefaultTargetFunction, "Function whose end lines carry the state snapshot")
	cmd.Flags().String("pairing", string(internal.PairByPosition), "How start and end lines are paired (position or name)")
}

// targetFunction is the target function to use for commands that only need that from the trace format.
func targetFunction(cmd *cobra.Command, cfg *config.Config) (string, error) {
	format, err := traceFormat(cmd, cfg)
	if err != nil {
		return "", err
	}
	return format.TargetFunction, nil
}

// loadDatasets loads trace snapshots from CBOR sequences in files or if the filename "-" is used, from STDIN.
func loadDatasets(cmd *cobra.Command, seq *internal.DatasetSequence, args []string, verbose bool) error {
	stderr := cmd.ErrOrStderr()
	for _, filename := range args {
		var err error
		if filename == "-" {
			if verbose {
				fmt.Fprintf(stderr, "Loading datasets from STDIN\n")
			}
			err = seq.LoadSnapshotSequenceFromReader(cmd.InOrStdin(), "<stdin#%d>")
			if err != nil {
				return fmt.Errorf("failed to load datasets from STDIN: %w", err)
			}
			continue
		}

		if verbose {
			fmt.Fprintf(stderr, "Loading datasets from %s\n", filename)
		}

		err = seq.LoadSnapshotFile(filename)
		if err != nil {
			return fmt.Errorf("failed to load snapshot file %s: %w", filename, err)
		}
	}
	return nil
}

// loadReports reads the report lines of filename, or STDIN for "-".
func loadReports(cmd *cobra.Command, filename string) ([]string, error) {
	return internal.LoadReportFile(filename, cmd.InOrStdin())
}
