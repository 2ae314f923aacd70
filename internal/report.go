// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Report is the JSON document consumed by the charting tools. The key names are fixed.
type Report struct {
	Totals          map[string]decimal.Decimal   `json:"tempi"`
	Executions      map[string]int               `json:"executions"`
	Min             map[string]decimal.Decimal   `json:"min"`
	Max             map[string]decimal.Decimal   `json:"max"`
	StdDev          map[string]decimal.Decimal   `json:"std_dev"`
	Avg             map[string]decimal.Decimal   `json:"avg"`
	Series          map[string][]decimal.Decimal `json:"tempi2"`
	States          [][]decimal.Decimal          `json:"stati"`
	Diagnostics     []int                        `json:"matlab_msg"`
	IterationCounts []int                        `json:"it_cnts"`
}

// ReportKeys lists every key a report line must carry.
var ReportKeys = []string{"tempi", "executions", "min", "max", "std_dev", "avg", "tempi2", "stati", "matlab_msg", "it_cnts"}

// GenerateReport creates a JSON report from a finalised TraceDataset
func GenerateReport(stats TraceDataset) Report {
	report := Report{
		Totals:          make(map[string]decimal.Decimal),
		Executions:      make(map[string]int),
		Min:             make(map[string]decimal.Decimal),
		Max:             make(map[string]decimal.Decimal),
		StdDev:          make(map[string]decimal.Decimal),
		Avg:             make(map[string]decimal.Decimal),
		Series:          make(map[string][]decimal.Decimal),
		States:          make([][]decimal.Decimal, 0, len(stats.States)),
		Diagnostics:     make([]int, 0, len(stats.Diagnostics)),
		IterationCounts: make([]int, 0, len(stats.IterationCounts)),
	}

	for _, fn := range stats.Ordered() {
		report.Totals[fn.Name] = fn.Stats.Total
		report.Executions[fn.Name] = fn.Stats.Calls
		report.Min[fn.Name] = fn.Stats.Min
		report.Max[fn.Name] = fn.Stats.Max
		report.StdDev[fn.Name] = fn.Stats.StdDev
		report.Avg[fn.Name] = fn.Stats.Mean
		report.Series[fn.Name] = append([]decimal.Decimal{}, fn.Stats.Samples...)
	}
	report.States = append(report.States, stats.States...)
	report.Diagnostics = append(report.Diagnostics, stats.Diagnostics...)
	report.IterationCounts = append(report.IterationCounts, stats.IterationCounts...)

	return report
}

// MarshalReportLine encodes a report as a single line of JSON, newline terminated.
func MarshalReportLine(report Report) ([]byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON report: %w", err)
	}
	return append(data, '\n'), nil
}

// AppendReportFile appends the report as one JSON line to filename.
func AppendReportFile(filename string, report Report) error {
	data, err := MarshalReportLine(report)
	if err != nil {
		return err
	}

	file, err := openAppend(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", filename, err)
	}
	return file.Close()
}

// ParseReport decodes one report line after checking it carries every key.
func ParseReport(line string) (Report, error) {
	if err := ValidateReport(line); err != nil {
		return Report{}, err
	}

	var report Report
	if err := json.Unmarshal([]byte(line), &report); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	return report, nil
}

// ReadReportLines returns the non-blank lines of a report file, one report per line.
func ReadReportLines(reader io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*MaxLineLength)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}
	return lines, nil
}

// LoadReportFile reads all report lines from filename, or from stdin when filename is "-".
func LoadReportFile(filename string, stdin io.Reader) ([]string, error) {
	if filename == "-" {
		return ReadReportLines(stdin)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file %s: %w", filename, err)
	}
	defer file.Close()

	return ReadReportLines(file)
}
