package internal

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

func init() {
	InitStats()
}

// FunctionExpected lists the statistics expected for one function, as decimal strings
type FunctionExpected struct {
	calls  int
	total  string
	min    string
	max    string
	mean   string
	stdDev string
}

func validateFunction(t *testing.T, dataset TraceDataset, name string, expected FunctionExpected) {
	t.Helper()

	fs, found := dataset.Functions[name]
	if !found {
		t.Fatalf("function %s not found, have %v", name, dataset.Order)
	}
	if fs.Calls != expected.calls {
		t.Errorf("%s: expected %d calls, got %d", name, expected.calls, fs.Calls)
	}
	checks := []struct {
		what     string
		got      decimal.Decimal
		expected string
	}{
		{"total", fs.Total, expected.total},
		{"min", fs.Min, expected.min},
		{"max", fs.Max, expected.max},
		{"mean", fs.Mean, expected.mean},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.expected)) {
			t.Errorf("%s: expected %s %s, got %s", name, c.what, c.expected, c.got)
		}
	}

	// The standard deviation goes through float64
	want := decimal.RequireFromString(expected.stdDev).InexactFloat64()
	if got := fs.StdDev.InexactFloat64(); math.Abs(got-want) > 1e-12 {
		t.Errorf("%s: expected std dev %s, got %s", name, expected.stdDev, fs.StdDev)
	}
}

// collectString runs a collector over an in-memory trace
func collectString(t *testing.T, trace string, format TraceFormat) (*Collector, error) {
	t.Helper()

	collector := NewCollector(format, false, nil, nil, zaptest.NewLogger(t))
	if err := collector.ProcessReader(strings.NewReader(trace), "test"); err != nil {
		return collector, err
	}
	return collector, collector.Finalise()
}

func collectFiles(t *testing.T, files ...string) *Collector {
	t.Helper()

	collector := NewCollector(DefaultTraceFormat(), false, nil, nil, zaptest.NewLogger(t))
	if err := collector.ProcessFiles(files, nil); err != nil {
		t.Fatalf("ProcessFiles(%v) failed: %v", files, err)
	}
	return collector
}

// stateSegment builds a 28 field state segment with the given state values and iteration count
func stateSegment(values []string, iterations string) string {
	fields := []string{"0"}
	fields = append(fields, values...)
	for len(fields) < DefaultIterationField {
		fields = append(fields, "0")
	}
	fields = append(fields, iterations)
	return "{" + strings.Join(fields, "\t") + "}"
}
