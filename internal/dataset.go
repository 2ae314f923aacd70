// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/go-hll"
	"github.com/shopspring/decimal"
)

// Need to wrap the hll.Hll type to use custom CBOR marshalling/un-marshalling
type HLLWrapper struct {
	*hll.Hll
}

// TimeWrapper wraps time.Time to provide custom CBOR marshaling as tag 1004
type TimeWrapper struct {
	time.Time
}

// Main data structure for the aggregated trace. This matches the structure of the CBOR snapshot files.
type TraceDataset struct {
	Version         uint16                    `cbor:"version"`
	Identifier      string                    `cbor:"id"`        // Unique identifier of the dataset
	Generator       string                    `cbor:"generator"` // Generator identifier (e.g., the software creating the dataset)
	Date            *TimeWrapper              `cbor:"date"`      // UTC date of collection
	Sources         []string                  `cbor:"sources"`   // Trace files the dataset was built from
	Order           []string                  `cbor:"order"`     // Function names in first-seen order
	Functions       map[string]*FunctionStats `cbor:"functions"`
	States          [][]decimal.Decimal       `cbor:"states"`           // Target function state vectors, in file order
	IterationCounts []int                     `cbor:"iteration_counts"` // Iteration count of each state vector
	Diagnostics     []int                     `cbor:"diagnostics"`      // Target call count at each diagnostic line
	StatesHll       *HLLWrapper               `cbor:"states_hll"`       // HLL of distinct state vectors
	StatesCount     uint64                    `cbor:"states_count"`     // Cardinality of StatesHll
	CallsCount      uint64                    `cbor:"calls_count"`
	extraStates     map[uint64]struct{}       // Exact distinct states, only known while collecting
	extraSource     string                    // Source filename when loaded from file
}

// Per-function timing data
type FunctionStats struct {
	Calls   int               `cbor:"calls"`
	Total   decimal.Decimal   `cbor:"total"`
	Min     decimal.Decimal   `cbor:"min"`
	Max     decimal.Decimal   `cbor:"max"`
	Samples []decimal.Decimal `cbor:"samples"` // Elapsed time of every call, in call order
	Mean    decimal.Decimal   `cbor:"-"`       // Derived by finaliseStats
	StdDev  decimal.Decimal   `cbor:"-"`       // Derived by finaliseStats
}

// Used to list functions in first-seen order
type NamedStats struct {
	Name  string
	Stats *FunctionStats
}

func InitStats() error {
	// Emit decimals as JSON numbers, the way the report consumers expect them
	decimal.MarshalJSONWithoutQuotes = true

	// initialise the HLL defaults to not have to specify them every time we create a new HLL
	return hll.Defaults(hll.Settings{
		Log2m:             14, // chosen for < 1% error rate (~0.81%)
		Regwidth:          5,  // 5 bits per register
		ExplicitThreshold: 0,
		SparseEnabled:     true,
	})
}

func newDataset(date *time.Time) TraceDataset {
	dataset := TraceDataset{
		Version:         DatasetVersion,
		Identifier:      uuid.New().String(),
		Generator:       fmt.Sprintf("soltrace %s", Version),
		Functions:       make(map[string]*FunctionStats),
		States:          [][]decimal.Decimal{},
		IterationCounts: []int{},
		Diagnostics:     []int{},
		StatesHll:       &HLLWrapper{Hll: &hll.Hll{}},
		extraStates:     make(map[uint64]struct{}),
	}

	dataset.SetDate(date)
	return dataset
}

func (dataset *TraceDataset) SetDate(date *time.Time) {
	if date == nil {
		now := time.Now().UTC()
		date = &now
	}
	var dateOnly = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dataset.Date = &TimeWrapper{Time: dateOnly}
}

func (dataset *TraceDataset) DateString() string {
	return dataset.Date.Format(time.DateOnly)
}

// Record adds one call of a function. Negative elapsed times are kept as they are.
func (dataset *TraceDataset) Record(function string, elapsed decimal.Decimal) {
	fs, found := dataset.Functions[function]
	if !found {
		fs = &FunctionStats{
			Min: elapsed,
			Max: elapsed,
		}
		dataset.Functions[function] = fs
		dataset.Order = append(dataset.Order, function)
	}

	fs.Calls++
	fs.Total = fs.Total.Add(elapsed)
	if elapsed.LessThan(fs.Min) {
		fs.Min = elapsed
	}
	if elapsed.GreaterThan(fs.Max) {
		fs.Max = elapsed
	}
	fs.Samples = append(fs.Samples, elapsed)

	dataset.CallsCount++
}

// addState appends a state snapshot and counts it in the distinct states HLL.
func (dataset *TraceDataset) addState(state StateVector) {
	dataset.States = append(dataset.States, state.Values)
	dataset.IterationCounts = append(dataset.IterationCounts, state.Iterations)

	hash := stateHash(state.Values)
	dataset.StatesHll.AddRaw(hash)
	dataset.extraStates[hash] = struct{}{}
}

// addDiagnostic marks a diagnostic line with the number of target calls seen so far.
func (dataset *TraceDataset) addDiagnostic(target string) {
	calls := 0
	if fs, found := dataset.Functions[target]; found {
		calls = fs.Calls
	}
	dataset.Diagnostics = append(dataset.Diagnostics, calls)
}

// Calls returns the number of calls recorded for a function.
func (dataset *TraceDataset) Calls(function string) int {
	if fs, found := dataset.Functions[function]; found {
		return fs.Calls
	}
	return 0
}

// Ordered lists the functions in the order they were first seen.
func (dataset *TraceDataset) Ordered() []NamedStats {
	res := make([]NamedStats, 0, len(dataset.Order))
	for _, name := range dataset.Order {
		res = append(res, NamedStats{Name: name, Stats: dataset.Functions[name]})
	}
	return res
}

// compute mean and standard deviation for each function, and the distinct states count, after all calls have been recorded.
func (dataset *TraceDataset) finaliseStats() error {
	for _, name := range dataset.Order {
		fs := dataset.Functions[name]
		if fs.Calls == 0 {
			return fmt.Errorf("function %s has no calls", name)
		}
		fs.Mean = mean(fs.Total, fs.Calls)
		stdDev, err := populationStdDev(fs.Samples)
		if err != nil {
			return fmt.Errorf("failed to compute standard deviation for %s: %w", name, err)
		}
		fs.StdDev = stdDev
	}

	dataset.StatesCount = dataset.StatesHll.Cardinality()
	return nil
}

// AggregateDatasets merges datasets in the given order. Samples and states are concatenated, and
// diagnostic marks of later datasets are shifted by the target calls that precede them.
func AggregateDatasets(datasets []TraceDataset, target string) (TraceDataset, error) {
	if len(datasets) < 2 {
		return TraceDataset{}, fmt.Errorf("no datasets to aggregate")
	}

	// Verify all input datasets have the same version
	for _, dataset := range datasets {
		if dataset.Version != datasets[0].Version {
			e := fmt.Errorf("version mismatch: dataset %s has version %d, expected %d", dataset.extraSource, dataset.Version, datasets[0].Version)
			return TraceDataset{}, e
		}
	}

	res := newDataset(&datasets[0].Date.Time)

	for _, dataset := range datasets {
		if err := res.StatesHll.StrictUnion(*dataset.StatesHll.Hll); err != nil {
			return TraceDataset{}, fmt.Errorf("failed to union states HLL: %w", err)
		}
		for hash := range dataset.extraStates {
			res.extraStates[hash] = struct{}{}
		}

		offset := res.Calls(target)
		for _, mark := range dataset.Diagnostics {
			res.Diagnostics = append(res.Diagnostics, mark+offset)
		}

		res.States = append(res.States, dataset.States...)
		res.IterationCounts = append(res.IterationCounts, dataset.IterationCounts...)
		res.Sources = append(res.Sources, dataset.Sources...)
		res.CallsCount += dataset.CallsCount

		for _, name := range dataset.Order {
			src := dataset.Functions[name]
			this, found := res.Functions[name]
			if !found {
				this = &FunctionStats{Min: src.Min, Max: src.Max}
				res.Functions[name] = this
				res.Order = append(res.Order, name)
			}
			this.Calls += src.Calls
			this.Total = this.Total.Add(src.Total)
			this.Min = decimal.Min(this.Min, src.Min)
			this.Max = decimal.Max(this.Max, src.Max)
			this.Samples = append(this.Samples, src.Samples...)
		}
	}

	if err := res.finaliseStats(); err != nil {
		return TraceDataset{}, err
	}

	return res, nil
}
