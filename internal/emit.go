package internal

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Mode selects how the statistics are emitted
type Mode string

const (
	ModePrint       Mode = "print"
	ModePrintHeader Mode = "printh"
	ModeCSV         Mode = "csv"
	ModeJSON        Mode = "json"
	ModePlot        Mode = "plot"
	ModeProm        Mode = "prom"
)

var modeExtensions = map[Mode]string{
	ModePrint:       "",
	ModePrintHeader: "csv",
	ModeCSV:         "csv",
	ModeJSON:        "json",
	ModePlot:        "png",
	ModeProm:        "prom",
}

// ParseMode returns the mode named by s. An empty or unknown name gives ModePrint, and ok is false for
// unknown names only.
func ParseMode(s string) (Mode, bool) {
	if s == "" {
		return ModePrint, true
	}
	if _, found := modeExtensions[Mode(s)]; found {
		return Mode(s), true
	}
	return ModePrint, false
}

// WritesFile reports whether the mode writes to an output file rather than stdout.
func (m Mode) WritesFile() bool {
	return modeExtensions[m] != ""
}

// DefaultOutput is the output filename used when none is given, e.g. "output.csv".
func DefaultOutput(base string, mode Mode) string {
	if !mode.WritesFile() {
		return ""
	}
	if base == "" {
		base = DefaultOutputBase
	}
	return fmt.Sprintf("%s.%s", base, modeExtensions[mode])
}

// Emitter writes a finalised dataset in one of the output modes.
type Emitter struct {
	Stdout     io.Writer
	OutputBase string
	Verbose    bool
	Timing     *TimingStats
	Logger     *zap.Logger
	// Collector, when set, adds the collector and timing statistics to print mode.
	Collector *Collector
	Sources   []string
}

// Emit writes stats in the named mode. An unknown mode falls back to print. It returns the file written, if any.
func (e *Emitter) Emit(stats TraceDataset, modeName string, output string) (string, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mode, ok := ParseMode(modeName)
	if !ok {
		logger.Debug("Unknown output mode, printing instead", zap.String("mode", modeName))
	}

	if mode.WritesFile() && output == "" {
		output = DefaultOutput(e.OutputBase, mode)
	}

	if e.Timing != nil {
		e.Timing.StartOutput()
		defer e.Timing.StopOutput()
	}

	var err error
	switch mode {
	case ModePrintHeader, ModeCSV:
		err = AppendCSVFile(output, stats, mode == ModePrintHeader)
	case ModeJSON:
		err = AppendReportFile(output, GenerateReport(stats))
	case ModePlot:
		err = RenderFunctionCharts(stats, output)
	case ModeProm:
		err = WriteMetricsFile(stats, output)
	default:
		return "", e.print(stats)
	}
	if err != nil {
		return "", err
	}

	logger.Debug("Output written", zap.String("mode", string(mode)), zap.String("file", output))
	return output, nil
}

func (e *Emitter) print(stats TraceDataset) error {
	if e.Collector != nil {
		return OutputCollectorStats(e.Stdout, e.Collector, e.Verbose, e.Sources)
	}
	return OutputDatasetStats(e.Stdout, stats, e.Verbose)
}
