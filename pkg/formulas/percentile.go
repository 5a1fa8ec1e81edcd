package formulas

import (
	"math"
	"sort"
)

// Percentile computes the p-th percentile (p in [0,100]) of data using
// linear interpolation between closest ranks.
//
// gonum's stat.Quantile only offers the Empirical and LinInterp cumulant
// kinds, neither of which matches the conventional h = (n-1)·p/100
// interpolation, so it is done here directly.
//
// An empty input yields NaN.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	if len(data) == 1 {
		return data[0]
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// HistoricalVaR computes Value-at-Risk at the given confidence level from a
// series of realized returns (historical simulation, no distributional
// assumption). The result is the loss magnitude: a positive number means a
// loss of that size is not expected to be exceeded at the confidence level.
//
// VaR(c) = -Percentile(returns, (1-c)×100)
func HistoricalVaR(returns []float64, confidence float64) float64 {
	return -Percentile(returns, (1-confidence)*100)
}

// Median returns the 50th percentile of data.
func Median(data []float64) float64 {
	return Percentile(data, 50)
}
