package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestCollector_SimpleTrace(t *testing.T) {
	collector := collectFiles(t, "../testdata/trace_simple.log")
	dataset := collector.Result

	if strings.Join(dataset.Order, ",") != "glp_init,glp_simplex" {
		t.Fatalf("expected functions in first-seen order, got %v", dataset.Order)
	}

	validateFunction(t, dataset, "glp_init", FunctionExpected{
		calls: 2, total: "1", min: "0.25", max: "0.75", mean: "0.5", stdDev: "0.25",
	})
	validateFunction(t, dataset, "glp_simplex", FunctionExpected{
		calls: 2, total: "1.5", min: "0.5", max: "1", mean: "0.75", stdDev: "0.25",
	})

	if len(dataset.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(dataset.States))
	}
	if dataset.States[0][0].String() != "1.5" || dataset.States[1][11].String() != "-3" {
		t.Errorf("unexpected state values: %v", dataset.States)
	}
	if len(dataset.IterationCounts) != 2 || dataset.IterationCounts[0] != 42 || dataset.IterationCounts[1] != 17 {
		t.Errorf("expected iteration counts [42 17], got %v", dataset.IterationCounts)
	}
	if len(dataset.Diagnostics) != 1 || dataset.Diagnostics[0] != 1 {
		t.Errorf("expected diagnostics [1], got %v", dataset.Diagnostics)
	}
	if dataset.CallsCount != 4 {
		t.Errorf("expected 4 calls, got %d", dataset.CallsCount)
	}
	if len(dataset.extraStates) != 2 || dataset.StatesCount < 1 || dataset.StatesCount > 3 {
		t.Errorf("expected 2 distinct states, got %d (estimated %d)", len(dataset.extraStates), dataset.StatesCount)
	}

	counters := collector.Counters()
	if counters.Lines != 8 || counters.Diagnostics != 1 || counters.Unpaired != 0 || counters.Files != 1 {
		t.Errorf("unexpected counters: %+v", counters)
	}
}

func TestCollector_UnpairedStart(t *testing.T) {
	collector := collectFiles(t, "../testdata/trace_unpaired.log")
	dataset := collector.Result

	validateFunction(t, dataset, "glp_simplex", FunctionExpected{
		calls: 1, total: "0.125", min: "0.125", max: "0.125", mean: "0.125", stdDev: "0",
	})
	validateFunction(t, dataset, "glp_delete_prob", FunctionExpected{
		calls: 1, total: "0.0005", min: "0.0005", max: "0.0005", mean: "0.0005", stdDev: "0",
	})

	if collector.Counters().Unpaired != 1 {
		t.Errorf("expected 1 unpaired start, got %d", collector.Counters().Unpaired)
	}
	// The diagnostic line comes before any target call
	if len(dataset.Diagnostics) != 1 || dataset.Diagnostics[0] != 0 {
		t.Errorf("expected diagnostics [0], got %v", dataset.Diagnostics)
	}
}

func TestCollector_PairingDoesNotCrossFiles(t *testing.T) {
	collector := collectFiles(t, "../testdata/trace_unpaired.log", "../testdata/trace_simple.log")
	dataset := collector.Result

	// The trailing start of the first file must not pair with the first line of the second
	validateFunction(t, dataset, "glp_simplex", FunctionExpected{
		calls: 3, total: "1.625", min: "0.125", max: "1", mean: "0.5416666666666667", stdDev: "0.35843021946010944",
	})
	if len(dataset.Sources) != 2 {
		t.Errorf("expected 2 sources, got %v", dataset.Sources)
	}
	if len(dataset.extraStates) != 2 {
		t.Errorf("expected the repeated state to count once, got %d distinct states", len(dataset.extraStates))
	}
	if len(dataset.Diagnostics) != 2 || dataset.Diagnostics[1] != 2 {
		t.Errorf("expected diagnostics [0 2], got %v", dataset.Diagnostics)
	}
}

func TestCollector_MalformedLine(t *testing.T) {
	collector := NewCollector(DefaultTraceFormat(), false, nil, nil, zaptest.NewLogger(t))
	err := collector.ProcessFiles([]string{"../testdata/trace_malformed.log"}, nil)
	if err == nil {
		t.Fatalf("expected an error for a malformed trace")
	}
	if !errors.Is(err, ErrMalformedLine) {
		t.Errorf("expected ErrMalformedLine, got %v", err)
	}

	var lineErr *LineError
	if !errors.As(err, &lineErr) {
		t.Fatalf("expected a *LineError, got %T", err)
	}
	if lineErr.Line != 2 {
		t.Errorf("expected the error on line 2, got %d", lineErr.Line)
	}
}

func TestCollector_MalformedState(t *testing.T) {
	trace := "[0] 1: @glp_simplex# - start\n[0] 2: @glp_simplex# - end {0\t1\t2}\n"
	_, err := collectString(t, trace, DefaultTraceFormat())
	if !errors.Is(err, ErrMalformedState) {
		t.Errorf("expected ErrMalformedState, got %v", err)
	}
}

func TestCollector_ElapsedOutOfRange(t *testing.T) {
	trace := "[0]0:x@f#- start\n[0]1e200:x@f#- end\n[0]0:x@f#- start\n[0]3e200:x@f#- end\n"
	_, err := collectString(t, trace, DefaultTraceFormat())
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestCollector_VerboseProgress(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		var stderr bytes.Buffer
		collector := NewCollector(DefaultTraceFormat(), verbose, nil, nil, zaptest.NewLogger(t))
		collector.Stderr = &stderr
		if err := collector.ProcessFiles([]string{"../testdata/trace_simple.log"}, nil); err != nil {
			t.Fatalf("ProcessFiles failed: %v", err)
		}

		if !verbose {
			if stderr.Len() != 0 {
				t.Errorf("expected no progress output without verbose, got:\n%s", stderr.String())
			}
			continue
		}
		expected := "Loading trace file: ../testdata/trace_simple.log\n" +
			"../testdata/trace_simple.log: 8 lines parsed, 4 calls\n"
		if stderr.String() != expected {
			t.Errorf("unexpected progress output:\n%s\nexpected:\n%s", stderr.String(), expected)
		}
	}
}

func TestCollector_StateOnlyForTargetEnd(t *testing.T) {
	trace := strings.Join([]string{
		"[0] 1: @glp_init# - start {garbage}",
		"[0] 2: @glp_init# - end {garbage}",
		"[0] 3: @solve# - start",
		"[0] 4: @solve# - end " + stateSegment(strings.Fields("1 2 3 4 5 6 7 8 9 10 11 12"), "3"),
	}, "\n")

	format := DefaultTraceFormat()
	format.TargetFunction = "solve"

	collector, err := collectString(t, trace, format)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(collector.Result.States) != 1 || collector.Result.IterationCounts[0] != 3 {
		t.Errorf("expected one state with 3 iterations, got %v %v", collector.Result.States, collector.Result.IterationCounts)
	}
}

func TestCollector_DiagnosticAndBlankLinesKeepParity(t *testing.T) {
	trace := strings.Join([]string{
		"[0] 1: @f# - start",
		"",
		"MATLAB: something",
		"   ",
		"[0] 3: @f# - end",
	}, "\n")

	collector, err := collectString(t, trace, DefaultTraceFormat())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	validateFunction(t, collector.Result, "f", FunctionExpected{
		calls: 1, total: "2", min: "2", max: "2", mean: "2", stdDev: "0",
	})
}

func TestCollector_DiagnosticsDisabled(t *testing.T) {
	format := DefaultTraceFormat()
	format.DiagnosticMarker = ""

	_, err := collectString(t, "MATLAB: something\n", format)
	if !errors.Is(err, ErrMalformedLine) {
		t.Errorf("expected the diagnostic line to be parsed as a trace line, got %v", err)
	}
}

func TestCollector_NamePairing(t *testing.T) {
	format := DefaultTraceFormat()
	format.Pairing = PairByName

	collector := NewCollector(format, false, nil, nil, zaptest.NewLogger(t))
	if err := collector.ProcessFiles([]string{"../testdata/trace_nested.log"}, nil); err != nil {
		t.Fatalf("ProcessFiles failed: %v", err)
	}

	validateFunction(t, collector.Result, "inner", FunctionExpected{
		calls: 1, total: "0.5", min: "0.5", max: "0.5", mean: "0.5", stdDev: "0",
	})
	validateFunction(t, collector.Result, "outer", FunctionExpected{
		calls: 1, total: "2", min: "2", max: "2", mean: "2", stdDev: "0",
	})
}

func TestCollector_Stdin(t *testing.T) {
	date := time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC)
	collector := NewCollector(DefaultTraceFormat(), false, &date, nil, zaptest.NewLogger(t))

	trace := "[0] 1: @f# - start\n[0] 1.25: @f# - end\n"
	if err := collector.ProcessFiles([]string{"-"}, strings.NewReader(trace)); err != nil {
		t.Fatalf("ProcessFiles failed: %v", err)
	}
	if collector.Result.Sources[0] != "<stdin>" {
		t.Errorf("expected source <stdin>, got %v", collector.Result.Sources)
	}
	if collector.Result.DateString() != "2024-02-29" {
		t.Errorf("expected date 2024-02-29, got %s", collector.Result.DateString())
	}

	err := NewCollector(DefaultTraceFormat(), false, nil, nil, nil).ProcessFiles([]string{"-"}, nil)
	if err == nil {
		t.Errorf("expected an error when reading '-' without stdin")
	}
}

func TestCollector_FileNotFound(t *testing.T) {
	collector := NewCollector(DefaultTraceFormat(), false, nil, nil, nil)
	if err := collector.ProcessFiles([]string{"../testdata/does-not-exist.log"}, nil); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
