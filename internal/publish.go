package internal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer used by the Publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends report lines to a Kafka topic, one message per report.
type Publisher struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaWriter creates a writer for topic on the given brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewPublisher(writer MessageWriter, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: writer, logger: logger}
}

// ReportMessages builds one message per report line. The key is the position of the report in its file.
func ReportMessages(lines []string, source string) ([]kafka.Message, error) {
	now := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(lines))
	for i, line := range lines {
		if err := ValidateReport(line); err != nil {
			return nil, fmt.Errorf("report %d of %s: %w", i+1, source, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.Itoa(i)),
			Value: []byte(line),
			Time:  now,
			Headers: []kafka.Header{
				{Key: "source", Value: []byte(source)},
				{Key: "generator", Value: []byte(fmt.Sprintf("soltrace %s", Version))},
			},
		})
	}
	return msgs, nil
}

// Publish validates every report line before sending any of them.
func (p *Publisher) Publish(ctx context.Context, lines []string, source string) (int, error) {
	msgs, err := ReportMessages(lines, source)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		p.logger.Warn("No reports to publish", zap.String("source", source))
		return 0, nil
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("failed to publish reports: %w", err)
	}
	p.logger.Info("Published reports", zap.String("source", source), zap.Int("count", len(msgs)))
	return len(msgs), nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
