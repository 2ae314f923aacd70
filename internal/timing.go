// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"time"
)

// TimingStats tracks how long the phases of a run take
type TimingStats struct {
	TotalStart     time.Time
	TotalElapsed   time.Duration
	ParsingStart   time.Time
	ParsingElapsed time.Duration
	OutputStart    time.Time
	OutputElapsed  time.Duration
}

// NewTimingStats starts the total clock
func NewTimingStats() *TimingStats {
	return &TimingStats{
		TotalStart: time.Now(),
	}
}

// StartParsing marks the beginning of trace parsing
func (ts *TimingStats) StartParsing() {
	ts.ParsingStart = time.Now()
}

// StopParsing marks the end of trace parsing and aggregation
func (ts *TimingStats) StopParsing() {
	ts.ParsingElapsed = time.Since(ts.ParsingStart)
}

// StartOutput marks the beginning of emitting results
func (ts *TimingStats) StartOutput() {
	ts.OutputStart = time.Now()
}

// StopOutput marks the end of emitting results
func (ts *TimingStats) StopOutput() {
	ts.OutputElapsed = time.Since(ts.OutputStart)
}

// Finish calculates the total elapsed time
func (ts *TimingStats) Finish() {
	ts.TotalElapsed = time.Since(ts.TotalStart)
}
