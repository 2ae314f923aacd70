package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"soltrace/internal/config"
)

// NewLogger initializes a zap logger based on the provided configuration, supporting console (or JSON) output
// on stderr and rotating file output. Stdout is left to the statistics.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stderr))
}

func newLogger(cfg config.LogConfig, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARN: %v, defaulting to WARN level\n", err)
		level = zapcore.WarnLevel
	}

	cores := []zapcore.Core{}

	switch strings.ToLower(cfg.Format) {
	case "console":
		cores = append(cores, zapcore.NewCore(buildEncoder(true), console, level))
	case "json":
		cores = append(cores, zapcore.NewCore(buildEncoder(false), console, level))
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown log format '%s'", cfg.Format)
	}

	if cfg.FileLoggingEnabled {
		if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory '%s': %w", cfg.Directory, err)
		}

		ljack := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, cfg.Filename),
			MaxSize:    cfg.MaxSize,    // megabytes
			MaxBackups: cfg.MaxBackups, // files
			MaxAge:     cfg.MaxAge,     // days
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(buildEncoder(false), zapcore.AddSync(ljack), level))
	}

	var combinedCore zapcore.Core
	switch len(cores) {
	case 0:
		combinedCore = zapcore.NewNopCore()
	case 1:
		combinedCore = cores[0]
	default:
		combinedCore = zapcore.NewTee(cores...)
	}

	loggerOptions := []zap.Option{
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	if level == zapcore.DebugLevel {
		loggerOptions = append(loggerOptions, zap.AddCaller(), zap.Development())
	}

	logger := zap.New(combinedCore, loggerOptions...)

	logger.Debug("Zap logger constructed",
		zap.String("final_level", level.String()),
		zap.String("console_format", cfg.Format),
		zap.Bool("file_logging_enabled", cfg.FileLoggingEnabled),
		zap.String("file_path", filepath.Join(cfg.Directory, cfg.Filename)),
	)

	return logger, nil
}

func parseLevel(levelStr string) (zapcore.Level, error) {
	var level zapcore.Level
	err := level.UnmarshalText([]byte(strings.ToLower(levelStr)))
	if err != nil {
		return zapcore.WarnLevel, fmt.Errorf("invalid log level '%s'", levelStr)
	}
	return level, nil
}

func buildEncoder(useConsoleStyle bool) zapcore.Encoder {
	var encoderConfig zapcore.EncoderConfig
	if useConsoleStyle {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	encoderConfig = zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}
