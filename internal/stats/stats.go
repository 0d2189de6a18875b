// Package stats provides the incremental statistics the simulation leans on:
// running sample distributions, count-weighted pooling of independent
// distributions, and O(1)-update simple and exponential moving averages.
package stats

import (
	"math"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// Distribution summarizes a sample: mean, standard deviation, and the number
// of observations behind them.
type Distribution struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"std_dev" json:"std_dev"`
	Count  int     `yaml:"count" json:"count"`
}

// Mean returns the arithmetic mean of values, zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// Sample computes the sample distribution of values: mean and sample
// standard deviation (n-1 divisor). With fewer than two observations the
// standard deviation is zero.
func Sample(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{Mean: 0, StdDev: 0, Count: 0}
	}

	mean := Mean(values)
	if n == 1 {
		return Distribution{Mean: mean, StdDev: 0, Count: 1}
	}

	sumSquares := 0.0

	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}

	return Distribution{
		Mean:   mean,
		StdDev: math.Sqrt(sumSquares / float64(n-1)),
		Count:  n,
	}
}

// PopulationStdDev computes the population standard deviation (n divisor) of
// values around the given mean. Band-style indicators use it because the
// full in-window population defines the spread, not a sample estimate.
func PopulationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sumSquares := 0.0

	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}

	return math.Sqrt(sumSquares / float64(len(values)))
}

// Combine pools independent distribution estimates into one aggregate using
// count-weighted pooling over E[x] and E[x^2]. The result reflects both
// within-group and between-group dispersion. The operation is associative
// and commutative over its inputs, so trial sets may complete in any order
// under parallel execution without changing the aggregate.
func Combine(distributions []Distribution) (Distribution, error) {
	total := 0
	weightedMean := 0.0
	weightedSquares := 0.0

	for _, d := range distributions {
		if d.Count <= 0 {
			continue
		}

		n := float64(d.Count)
		total += d.Count
		weightedMean += n * d.Mean
		weightedSquares += n * (d.StdDev*d.StdDev + d.Mean*d.Mean)
	}

	if total == 0 {
		return Distribution{}, errors.New(errors.ErrCodeInsufficientData, "no observations to combine")
	}

	mean := weightedMean / float64(total)

	variance := weightedSquares/float64(total) - mean*mean
	if variance < 0 {
		// floating-point noise around zero
		variance = 0
	}

	return Distribution{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Count:  total,
	}, nil
}
