package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"soltrace/internal"
)

const (
	defaultPublishTopic   = "soltrace-reports"
	defaultLogLevel       = "warn"
	defaultLogFormat      = "console"
	defaultLogFileEnabled = false
	defaultLogDirectory   = "log"
	defaultLogFilename    = "soltrace.log"
	defaultLogMaxSizeMB   = 100
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 7
	defaultLogCompress    = false

	// Environment variable prefix
	envPrefix = "SOLTRACE"
)

type Config struct {
	Trace   TraceConfig   `mapstructure:"trace"`
	Output  OutputConfig  `mapstructure:"output"`
	Publish PublishConfig `mapstructure:"publish"`
	Log     LogConfig     `mapstructure:"log"`
}

type TraceConfig struct {
	TargetFunction   string `mapstructure:"targetFunction"`
	StartMarker      string `mapstructure:"startMarker"`
	EndMarker        string `mapstructure:"endMarker"`
	DiagnosticMarker string `mapstructure:"diagnosticMarker"` // Empty disables diagnostic lines
	StateFirstField  int    `mapstructure:"stateFirstField"`
	StateLastField   int    `mapstructure:"stateLastField"` // Exclusive
	IterationField   int    `mapstructure:"iterationField"`
	Pairing          string `mapstructure:"pairing"` // "position" or "name"
}

type OutputConfig struct {
	Base string `mapstructure:"base"` // Default output file name without extension
}

type PublishConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads the optional config file, applies defaults and environment, and validates.
// An empty configPath means defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	setDefaults(v)

	if configPath != "" {
		if err := readConfigFile(v, configPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
// Every key needs a default for AutomaticEnv to find it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("trace.targetFunction", internal.DefaultTargetFunction)
	v.SetDefault("trace.startMarker", internal.DefaultStartMarker)
	v.SetDefault("trace.endMarker", internal.DefaultEndMarker)
	v.SetDefault("trace.diagnosticMarker", internal.DefaultDiagnosticMarker)
	v.SetDefault("trace.stateFirstField", internal.DefaultStateFirstField)
	v.SetDefault("trace.stateLastField", internal.DefaultStateLastField)
	v.SetDefault("trace.iterationField", internal.DefaultIterationField)
	v.SetDefault("trace.pairing", string(internal.PairByPosition))
	v.SetDefault("output.base", internal.DefaultOutputBase)
	v.SetDefault("publish.brokers", []string{"localhost:9092"})
	v.SetDefault("publish.topic", defaultPublishTopic)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile reads the configuration file set on viper.
func readConfigFile(v *viper.Viper, configPath string) error {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrConfigFileMissing, configPath)
	}

	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Trace.TargetFunction == "" {
		return ErrEmptyTargetFunction
	}
	if cfg.Trace.EndMarker == "" {
		return ErrEmptyEndMarker
	}
	pairing, err := internal.ParsePairingMode(cfg.Trace.Pairing)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPairing, err)
	}
	if pairing == internal.PairByName && cfg.Trace.StartMarker == "" {
		return ErrEmptyStartMarker
	}
	if err := cfg.Trace.layout().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStateLayout, err)
	}
	if cfg.Output.Base == "" {
		return ErrInvalidOutputBase
	}
	if cfg.Publish.Topic == "" {
		return ErrEmptyPublishTopic
	}
	return nil
}

func (tc TraceConfig) layout() internal.StateLayout {
	return internal.StateLayout{
		FirstField:     tc.StateFirstField,
		LastField:      tc.StateLastField,
		IterationField: tc.IterationField,
	}
}

// Format converts the trace section to the collector's TraceFormat. The config must have been validated.
func (tc TraceConfig) Format() internal.TraceFormat {
	pairing, _ := internal.ParsePairingMode(tc.Pairing)
	return internal.TraceFormat{
		TargetFunction:   tc.TargetFunction,
		StartMarker:      tc.StartMarker,
		EndMarker:        tc.EndMarker,
		DiagnosticMarker: tc.DiagnosticMarker,
		State:            tc.layout(),
		Pairing:          pairing,
	}
}
