package config

import "errors"

var (
	ErrReadingConfigFile   = errors.New("failed to read config file")
	ErrUnmarshallingConfig = errors.New("failed to unmarshal config")
	ErrConfigFileMissing   = errors.New("config file not found")
	ErrEmptyTargetFunction = errors.New("trace targetFunction cannot be empty")
	ErrEmptyEndMarker      = errors.New("trace endMarker cannot be empty")
	ErrEmptyStartMarker    = errors.New("trace startMarker cannot be empty with name pairing")
	ErrInvalidStateLayout  = errors.New("trace state layout is invalid")
	ErrInvalidPairing      = errors.New("trace pairing must be position or name")
	ErrEmptyPublishTopic   = errors.New("publish topic cannot be empty")
	ErrInvalidOutputBase   = errors.New("output base cannot be empty")
)
