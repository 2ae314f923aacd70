package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"soltrace/internal/config"
)

func TestNewLogger_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "console"}, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level:\n%s", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown") {
		t.Errorf("expected the warning in the output:\n%s", out)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}

	logger.Info("collected")
	_ = logger.Sync()

	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"msg":"collected"`) {
		t.Errorf("expected a JSON log line, got %q", buf.String())
	}
}

func TestNewLogger_InvalidLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "chatty", Format: "console"}, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) || !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Errorf("expected the level to fall back to warn")
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	if _, err := newLogger(config.LogConfig{Level: "info", Format: "xml"}, zapcore.AddSync(&bytes.Buffer{})); err == nil {
		t.Errorf("expected an error for an unknown format")
	}
}

func TestNewLogger_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	cfg := config.LogConfig{
		Level:              "info",
		Format:             "none",
		FileLoggingEnabled: true,
		Directory:          dir,
		Filename:           "soltrace.log",
		MaxSize:            1,
	}

	logger, err := newLogger(cfg, zapcore.AddSync(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("to file")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "soltrace.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("expected the message in the log file, got %q", data)
	}
}
