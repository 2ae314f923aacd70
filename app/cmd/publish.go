package cmd

import (
	"fmt"
	"soltrace/internal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newMessageWriter is replaced in tests to publish without a broker
var newMessageWriter = func(brokers []string, topic string) internal.MessageWriter {
	return internal.NewKafkaWriter(brokers, topic)
}

func newPublishCmd() *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish <report-file>",
		Short: "Publish JSON reports to Kafka",
		Long: `Validate every line of a JSON report file and publish each report as one Kafka message.
Brokers and topic default to the publish section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			var (
				brokers []string
				topic   string
				verbose bool
			)

			parseFlags(cmd, map[string]any{
				"brokers": &brokers,
				"topic":   &topic,
				"verbose": &verbose,
			})

			cmd.SilenceUsage = true

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if len(brokers) == 0 {
				brokers = cfg.Publish.Brokers
			}
			if topic == "" {
				topic = cfg.Publish.Topic
			}
			if len(brokers) == 0 {
				return fmt.Errorf("no Kafka brokers configured")
			}

			lines, err := loadReports(cmd, args[0])
			if err != nil {
				return err
			}

			logger.Debug("Publishing reports",
				zap.Strings("brokers", brokers),
				zap.String("topic", topic),
				zap.Int("reports", len(lines)),
			)

			publisher := internal.NewPublisher(newMessageWriter(brokers, topic), logger)
			count, err := publisher.Publish(cmd.Context(), lines, args[0])
			closeErr := publisher.Close()
			if err != nil {
				return err
			}
			if closeErr != nil {
				return fmt.Errorf("failed to close Kafka writer: %w", closeErr)
			}

			if verbose {
				fmt.Fprintf(stdout, "Published %d reports to %s\n", count, topic)
			}
			return nil
		},
	}

	publishCmd.Flags().StringSlice("brokers", nil, "Kafka brokers (host:port), defaults to publish.brokers")
	publishCmd.Flags().String("topic", "", "Kafka topic, defaults to publish.topic")
	publishCmd.Flags().BoolP("verbose", "v", false, "Verbose output")

	return publishCmd
}

var publishCmd = newPublishCmd()

func init() {
	rootCmd.AddCommand(publishCmd)
}
