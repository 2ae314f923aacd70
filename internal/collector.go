// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TraceFormat describes how trace lines are interpreted.
type TraceFormat struct {
	TargetFunction   string // function whose end lines carry a state segment
	StartMarker      string
	EndMarker        string
	DiagnosticMarker string // lines containing it are skipped and marked; empty disables
	State            StateLayout
	Pairing          PairingMode
}

func DefaultTraceFormat() TraceFormat {
	return TraceFormat{
		TargetFunction:   DefaultTargetFunction,
		StartMarker:      DefaultStartMarker,
		EndMarker:        DefaultEndMarker,
		DiagnosticMarker: DefaultDiagnosticMarker,
		State:            DefaultStateLayout(),
		Pairing:          PairByPosition,
	}
}

type Collector struct {
	format          TraceFormat
	verbose         bool
	logger          *zap.Logger
	Result          TraceDataset // Resulting dataset after processing
	lineCount       uint         // Count of start and end lines parsed
	diagnosticCount uint         // Count of skipped diagnostic lines
	unpairedCount   uint         // Count of starts left without an end
	timing          *TimingStats // Timing statistics
	filesLoaded     []string     // List of files that were successfully loaded
	Stderr          io.Writer    // Verbose progress output, os.Stderr when nil
}

func NewCollector(format TraceFormat, verbose bool, date *time.Time, timing *TimingStats, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timing == nil {
		timing = NewTimingStats()
	}
	return &Collector{
		format:  format,
		verbose: verbose,
		logger:  logger,
		Result:  newDataset(date),
		timing:  timing,
	}
}

// ProcessReader parses one trace. Any malformed line aborts the whole trace.
func (c *Collector) ProcessReader(reader io.Reader, source string) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)

	p := newPairer(c.format)
	linesBefore, callsBefore := c.lineCount, c.Result.CallsCount
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := c.processLine(p, scanner.Text()); err != nil {
			return &LineError{Source: source, Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", source, err)
	}

	if c.verbose {
		fmt.Fprintf(c.stderr(), "%s: %d lines parsed, %d calls\n", source, c.lineCount-linesBefore, c.Result.CallsCount-callsBefore)
	}

	if n := p.pending(); n > 0 {
		c.unpairedCount += uint(n)
		c.logger.Warn("Trace ended with unpaired start lines",
			zap.String("source", source),
			zap.Int("unpaired", n),
		)
	}

	c.Result.Sources = append(c.Result.Sources, source)
	return nil
}

func (c *Collector) processLine(p pairer, text string) error {
	line := strings.TrimSpace(text)
	if line == "" {
		return nil
	}

	if c.format.DiagnosticMarker != "" && strings.Contains(line, c.format.DiagnosticMarker) {
		c.Result.addDiagnostic(c.format.TargetFunction)
		c.diagnosticCount++
		c.logger.Debug("Skipping diagnostic line",
			zap.Int("target_calls", c.Result.Calls(c.format.TargetFunction)),
		)
		return nil
	}

	parsed, err := ParseLine(line)
	if err != nil {
		return err
	}
	c.lineCount++

	call, done, err := p.pair(parsed)
	if err != nil || !done {
		return err
	}

	if call.Function == c.format.TargetFunction && strings.Contains(line, c.format.EndMarker) {
		state, err := ExtractState(line, c.format.State)
		if err != nil {
			return err
		}
		c.Result.addState(state)
	}

	c.Result.Record(call.Function, call.Elapsed())
	return nil
}

func (c *Collector) Finalise() error {
	if err := c.Result.finaliseStats(); err != nil {
		return fmt.Errorf("failed to finalise statistics: %w", err)
	}

	c.logger.Info("Trace collection finished",
		zap.Int("functions", len(c.Result.Order)),
		zap.Uint64("calls", c.Result.CallsCount),
		zap.Int("states", len(c.Result.States)),
		zap.Uint("diagnostics", c.diagnosticCount),
		zap.Uint("unpaired", c.unpairedCount),
	)
	return nil
}

// ProcessFiles processes multiple trace files into collector.Result
func (c *Collector) ProcessFiles(files []string, stdin io.Reader) error {
	c.timing.StartParsing()

	// Process each input file
	for _, inputFile := range files {
		c.logger.Debug("Loading trace file", zap.String("file", inputFile))
		if c.verbose {
			fmt.Fprintf(c.stderr(), "Loading trace file: %s\n", inputFile)
		}

		var err error
		var reader io.Reader
		if inputFile == "-" {
			if stdin == nil {
				return fmt.Errorf("no standard input available for '-'")
			}
			reader = stdin
			inputFile = "<stdin>"
		} else {
			var f *os.File
			f, err = os.Open(inputFile)
			if err == nil {
				defer f.Close()
				reader = f
			}
		}

		if reader != nil {
			err = c.ProcessReader(reader, inputFile)
		}

		if err != nil {
			return fmt.Errorf("failed to load trace file %s: %w", inputFile, err)
		}
	}

	c.timing.StopParsing()

	if err := c.Finalise(); err != nil {
		return fmt.Errorf("failed to finalise collection: %w", err)
	}

	c.filesLoaded = files

	return nil
}

func (c *Collector) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

// Counters reports what the collector saw besides the recorded calls.
func (c *Collector) Counters() CollectorCounters {
	return CollectorCounters{
		Lines:       c.lineCount,
		Diagnostics: c.diagnosticCount,
		Unpaired:    c.unpairedCount,
		Files:       len(c.filesLoaded),
	}
}

type CollectorCounters struct {
	Lines       uint
	Diagnostics uint
	Unpaired    uint
	Files       int
}
