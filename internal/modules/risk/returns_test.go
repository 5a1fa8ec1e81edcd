package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shayanv/portefeuille/internal/modules/history"
)

func day(n int) time.Time {
	return time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestAlign_InnerJoinOnCommonDates(t *testing.T) {
	series := history.PriceSeries{
		"A": {
			{Date: day(0), Close: 100},
			{Date: day(1), Close: 110},
			{Date: day(2), Close: 105}, // B did not trade this day
			{Date: day(3), Close: 121},
		},
		"B": {
			{Date: day(0), Close: 50},
			{Date: day(1), Close: 55},
			{Date: day(3), Close: 44},
		},
	}

	aligned := Align(series)

	require.Len(t, aligned.Dates, 3, "only dates both tickers traded survive")
	assert.Equal(t, []string{"A", "B"}, aligned.Tickers)

	// Every ticker shares the identical date index
	for _, ticker := range aligned.Tickers {
		assert.Len(t, aligned.Closes[ticker], 3)
		assert.Len(t, aligned.Returns[ticker], 2)
	}
	assert.Equal(t, 2, aligned.Observations())

	// Returns come from the aligned closes: A goes 100 -> 110 -> 121
	assert.InDelta(t, 0.10, aligned.Returns["A"][0], 1e-12)
	assert.InDelta(t, 0.10, aligned.Returns["A"][1], 1e-12)

	// B goes 50 -> 55 -> 44
	assert.InDelta(t, 0.10, aligned.Returns["B"][0], 1e-12)
	assert.InDelta(t, -0.20, aligned.Returns["B"][1], 1e-12)
}

func TestAlign_Empty(t *testing.T) {
	aligned := Align(history.PriceSeries{})
	assert.Empty(t, aligned.Dates)
	assert.Equal(t, 0, aligned.Observations())
	assert.Nil(t, aligned.PortfolioReturns(map[string]float64{"A": 1}))
}

func TestPortfolioReturns_WeightedCombination(t *testing.T) {
	series := history.PriceSeries{
		"A": {
			{Date: day(0), Close: 100},
			{Date: day(1), Close: 110},
		},
		"B": {
			{Date: day(0), Close: 100},
			{Date: day(1), Close: 90},
		},
	}

	aligned := Align(series)
	portfolio := aligned.PortfolioReturns(map[string]float64{"A": 0.6, "B": 0.4})

	require.Len(t, portfolio, 1)
	// 0.6×(+10%) + 0.4×(−10%) = +2%
	assert.InDelta(t, 0.02, portfolio[0], 1e-12)
}

func TestPortfolioReturns_IgnoresUnknownTickers(t *testing.T) {
	series := history.PriceSeries{
		"A": {
			{Date: day(0), Close: 100},
			{Date: day(1), Close: 101},
		},
	}

	aligned := Align(series)
	portfolio := aligned.PortfolioReturns(map[string]float64{"A": 1.0, "GHOST": 0.5})

	require.Len(t, portfolio, 1)
	assert.False(t, math.IsNaN(portfolio[0]))
	assert.InDelta(t, 0.01, portfolio[0], 1e-12)
}
