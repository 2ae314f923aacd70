package internal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"
)

// StateLayout locates the state vector and the iteration count among the tab separated
// fields of a state segment.
type StateLayout struct {
	FirstField     int // first state field, inclusive
	LastField      int // last state field, exclusive
	IterationField int
}

// StateVector is the simplex state captured at the end of a target function call.
type StateVector struct {
	Values     []decimal.Decimal
	Iterations int
}

func DefaultStateLayout() StateLayout {
	return StateLayout{
		FirstField:     DefaultStateFirstField,
		LastField:      DefaultStateLastField,
		IterationField: DefaultIterationField,
	}
}

func (l StateLayout) Validate() error {
	if l.FirstField < 0 || l.IterationField < 0 {
		return fmt.Errorf("state field indexes must be non-negative")
	}
	if l.LastField <= l.FirstField {
		return fmt.Errorf("state field range [%d,%d) is empty", l.FirstField, l.LastField)
	}
	return nil
}

// MinFields is the number of fields a segment needs to satisfy the layout.
func (l StateLayout) MinFields() int {
	return max(l.LastField, l.IterationField+1)
}

// Size is the length of the extracted state vector.
func (l StateLayout) Size() int {
	return l.LastField - l.FirstField
}

// ExtractState decodes the {...} segment of a target end line.
func ExtractState(line string, layout StateLayout) (StateVector, error) {
	open := strings.IndexByte(line, '{')
	if open < 0 {
		return StateVector{}, &StateError{Reason: "missing '{'"}
	}
	closeIdx, ok := indexAfter(line, '}', open+1)
	if !ok {
		return StateVector{}, &StateError{Reason: "missing '}'"}
	}

	fields := strings.Split(line[open+1:closeIdx], "\t")
	if len(fields) < layout.MinFields() {
		return StateVector{}, &StateError{Fields: len(fields), Required: layout.MinFields()}
	}

	values := make([]decimal.Decimal, 0, layout.Size())
	for i := layout.FirstField; i < layout.LastField; i++ {
		v, err := decimal.NewFromString(strings.TrimSpace(fields[i]))
		if err != nil {
			return StateVector{}, &StateError{Fields: len(fields), Reason: fmt.Sprintf("field %d: invalid number '%s'", i, fields[i])}
		}
		values = append(values, v)
	}

	iterations, err := strconv.Atoi(strings.TrimSpace(fields[layout.IterationField]))
	if err != nil {
		return StateVector{}, &StateError{Fields: len(fields), Reason: fmt.Sprintf("field %d: invalid iteration count '%s'", layout.IterationField, fields[layout.IterationField])}
	}

	return StateVector{Values: values, Iterations: iterations}, nil
}

// stateHash hashes the canonical text of a state vector, so that 1.0 and 1.00 collide.
func stateHash(values []decimal.Decimal) uint64 {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(v.String())
	}
	return xxh3.HashString(b.String())
}
