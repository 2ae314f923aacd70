// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// mean divides a total by a call count with decimal.DivisionPrecision digits.
func mean(total decimal.Decimal, calls int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(calls)))
}

// populationStdDev divides by N, not N-1.
func populationStdDev(samples []decimal.Decimal) (decimal.Decimal, error) {
	if len(samples) < 2 {
		return decimal.Zero, nil
	}

	data := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		data[i] = s.InexactFloat64()
	}

	sd, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return decimal.Zero, err
	}
	if math.IsInf(sd, 0) || math.IsNaN(sd) {
		return decimal.Zero, fmt.Errorf("%w: standard deviation of %d samples", ErrOutOfRange, len(samples))
	}
	return decimal.NewFromFloat(sd), nil
}

// euclideanNorm is the L2 norm of a state vector.
func euclideanNorm(values []decimal.Decimal) float64 {
	data := make(stats.Float64Data, len(values))
	for i, v := range values {
		f := v.InexactFloat64()
		data[i] = f * f
	}
	sum, _ := stats.Sum(data)
	return math.Sqrt(sum)
}
