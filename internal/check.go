package internal

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ValidateReport checks that line is a JSON object with every report key present.
func ValidateReport(line string) error {
	if !gjson.Valid(line) {
		return fmt.Errorf("%w: not valid JSON", ErrInvalidReport)
	}

	parsed := gjson.Parse(line)
	if !parsed.IsObject() {
		return fmt.Errorf("%w: not a JSON object", ErrInvalidReport)
	}

	var missing []string
	for _, key := range ReportKeys {
		if !parsed.Get(key).Exists() {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing keys %s", ErrInvalidReport, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateReports checks every line and returns the number of valid reports.
// The first invalid line stops the check.
func ValidateReports(lines []string) (int, error) {
	for i, line := range lines {
		if err := ValidateReport(line); err != nil {
			return i, fmt.Errorf("report %d: %w", i+1, err)
		}
	}
	return len(lines), nil
}

// ReportSummary returns the call counts of a report line without decoding it fully.
func ReportSummary(line string) map[string]int64 {
	res := make(map[string]int64)
	gjson.Get(line, "executions").ForEach(func(key, value gjson.Result) bool {
		res[key.String()] = value.Int()
		return true
	})
	return res
}
