package internal

import (
	"errors"
	"fmt"
)

var (
	ErrMissingArgument = errors.New("missing data file argument")
	ErrMalformedLine   = errors.New("malformed trace line")
	ErrMalformedState  = errors.New("malformed state segment")
	ErrUnmatchedEnd    = errors.New("end marker without a pending start")
	ErrUnknownMarker   = errors.New("marker is neither start nor end")
	ErrInvalidReport   = errors.New("invalid report")
	ErrOutOfRange      = errors.New("elapsed times out of float64 range")
)

// LineError ties a parse failure to the trace line that caused it.
type LineError struct {
	Source string
	Line   int
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// StateError reports a state segment that could not be decoded.
type StateError struct {
	Fields   int // number of tab separated fields found
	Required int
	Reason   string
}

func (e *StateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%v: %s", ErrMalformedState, e.Reason)
	}
	return fmt.Sprintf("%v: %d fields, need at least %d", ErrMalformedState, e.Fields, e.Required)
}

func (e *StateError) Is(target error) bool {
	return target == ErrMalformedState
}
