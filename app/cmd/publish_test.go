package cmd

import (
	"context"
	"errors"
	"os"
	"soltrace/internal"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	brokers  []string
	topic    string
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

// useFakeWriter replaces the Kafka writer for the duration of the test
func useFakeWriter(t *testing.T) *fakeWriter {
	t.Helper()

	fake := &fakeWriter{}
	orig := newMessageWriter
	newMessageWriter = func(brokers []string, topic string) internal.MessageWriter {
		fake.brokers = brokers
		fake.topic = topic
		return fake
	}
	t.Cleanup(func() { newMessageWriter = orig })
	return fake
}

func TestPublishCmd(t *testing.T) {
	fake := useFakeWriter(t)
	reports := writeReports(t, simpleTrace, 2)

	stdout, stderr, err := executeCommand(t, newPublishCmd(), reports,
		"--brokers", "kafka1:9092,kafka2:9092", "--topic", "solver-reports", "--verbose")
	if err != nil {
		t.Fatalf("publish failed: %v\n%s", err, stderr)
	}
	expectPatterns(t, stdout, `Published 2 reports to solver-reports`)

	if len(fake.brokers) != 2 || fake.brokers[0] != "kafka1:9092" || fake.brokers[1] != "kafka2:9092" {
		t.Errorf("unexpected brokers %v", fake.brokers)
	}
	if fake.topic != "solver-reports" {
		t.Errorf("unexpected topic %q", fake.topic)
	}
	if len(fake.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(fake.messages))
	}
	if string(fake.messages[1].Key) != "1" {
		t.Errorf("expected the second message to be keyed 1, got %q", fake.messages[1].Key)
	}
	if !fake.closed {
		t.Errorf("expected the writer to be closed")
	}
}

func TestPublishCmd_ConfigDefaults(t *testing.T) {
	fake := useFakeWriter(t)
	reports := writeReports(t, simpleTrace, 1)
	t.Setenv("SOLTRACE_PUBLISH_TOPIC", "from-env")

	if _, _, err := executeCommand(t, newPublishCmd(), reports); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if fake.topic != "from-env" {
		t.Errorf("expected the topic from the environment, got %q", fake.topic)
	}
	if len(fake.brokers) != 1 || fake.brokers[0] != "localhost:9092" {
		t.Errorf("expected the default broker, got %v", fake.brokers)
	}
}

func TestPublishCmd_InvalidReport(t *testing.T) {
	fake := useFakeWriter(t)
	reports := writeReports(t, simpleTrace, 1)

	f, err := os.OpenFile(reports, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("failed to open %s: %v", reports, err)
	}
	if _, err := f.WriteString("not json\n"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	f.Close()

	_, _, err = executeCommand(t, newPublishCmd(), reports, "--brokers", "kafka1:9092")
	if !errors.Is(err, internal.ErrInvalidReport) {
		t.Errorf("expected ErrInvalidReport, got %v", err)
	}
	if len(fake.messages) != 0 {
		t.Errorf("expected nothing to be published, got %d messages", len(fake.messages))
	}
}
