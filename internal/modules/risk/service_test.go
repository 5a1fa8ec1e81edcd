package risk

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shayanv/portefeuille/internal/clients/yahoo"
	"github.com/shayanv/portefeuille/internal/modules/history"
	"github.com/shayanv/portefeuille/pkg/formulas"
	"github.com/shayanv/portefeuille/pkg/logger"
)

type fakeProvider struct {
	series  history.PriceSeries
	missing []string
}

func (f *fakeProvider) Fetch(_ context.Context, _ []string, _ int) (history.PriceSeries, []string) {
	return f.series, f.missing
}

// seriesFromReturns builds a daily close series starting at 100 whose
// consecutive returns are exactly the given values.
func seriesFromReturns(returns []float64) []yahoo.DailyClose {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	closes := []yahoo.DailyClose{{Date: day, Close: 100}}
	price := 100.0
	for i, r := range returns {
		price *= 1 + r
		closes = append(closes, yahoo.DailyClose{Date: day.AddDate(0, 0, i+1), Close: price})
	}
	return closes
}

func alternating(n int, magnitude float64, startPositive bool) []float64 {
	returns := make([]float64, n)
	sign := 1.0
	if !startPositive {
		sign = -1.0
	}
	for i := range returns {
		returns[i] = sign * magnitude
		sign = -sign
	}
	return returns
}

func newTestService(provider HistoryProvider) *Service {
	return NewService(provider, Config{LookbackDays: 252}, logger.New(logger.Config{Level: "error"}))
}

func TestAnalyze_WeightsSumToOne(t *testing.T) {
	provider := &fakeProvider{series: history.PriceSeries{
		"A": seriesFromReturns(alternating(40, 0.01, true)),
		"B": seriesFromReturns(alternating(40, 0.02, false)),
		"C": seriesFromReturns(alternating(40, 0.015, true)),
	}}
	service := newTestService(provider)

	result := service.Analyze(context.Background(), map[string]float64{"A": 500, "B": 300, "C": 200})
	require.NotNil(t, result.Snapshot)

	sum := 0.0
	for _, w := range result.Snapshot.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAnalyze_PortfolioVolatilityIsWeightedAverage(t *testing.T) {
	// A and B move in opposite directions, so a covariance-based portfolio
	// volatility would be far below the weighted average. The reported
	// figure is defined as the weighted average and must stay that way.
	returnsA := alternating(40, 0.01, true)
	returnsB := alternating(40, 0.02, false)

	provider := &fakeProvider{series: history.PriceSeries{
		"A": seriesFromReturns(returnsA),
		"B": seriesFromReturns(returnsB),
	}}
	service := newTestService(provider)

	result := service.Analyze(context.Background(), map[string]float64{"A": 600, "B": 400})
	require.NotNil(t, result.Snapshot)
	snap := result.Snapshot

	// All dates are common, so per-asset vols match the input returns.
	volA := formulas.AnnualizedVolatility(returnsA)
	volB := formulas.AnnualizedVolatility(returnsB)

	assert.InDelta(t, volA, snap.VolatilityByAsset["A"], 1e-9)
	assert.InDelta(t, volB, snap.VolatilityByAsset["B"], 1e-9)
	assert.InDelta(t, 0.6*volA+0.4*volB, snap.PortfolioVolatility, 1e-9)
	assert.InDelta(t, (volA+volB)/2, snap.MeanVolatility, 1e-9)
}

func TestAnalyze_WeightedVolatilityExample(t *testing.T) {
	// Two tickers with weights 0.6/0.4 and vols 10%/20% give 14%.
	vol := 0.6*10 + 0.4*20
	assert.InDelta(t, 14.0, vol, 1e-12)
}

func TestAnalyze_VaR99AtLeastVaR95(t *testing.T) {
	// A mildly skewed return pattern, nothing degenerate.
	returns := make([]float64, 120)
	for i := range returns {
		switch i % 4 {
		case 0:
			returns[i] = 0.012
		case 1:
			returns[i] = -0.008
		case 2:
			returns[i] = 0.004
		case 3:
			returns[i] = -0.025
		}
	}

	provider := &fakeProvider{series: history.PriceSeries{
		"A": seriesFromReturns(returns),
	}}
	service := newTestService(provider)

	result := service.Analyze(context.Background(), map[string]float64{"A": 1000})
	require.NotNil(t, result.Snapshot)

	assert.GreaterOrEqual(t, result.Snapshot.VaR99, result.Snapshot.VaR95,
		"the 99%% tail loss must be at least the 95%% one")
}

func TestAnalyze_CorrelationMatrixProperties(t *testing.T) {
	provider := &fakeProvider{series: history.PriceSeries{
		"A": seriesFromReturns(alternating(60, 0.01, true)),
		"B": seriesFromReturns(alternating(60, 0.02, false)),
		"C": seriesFromReturns(alternating(60, 0.012, true)),
	}}
	service := newTestService(provider)

	result := service.Analyze(context.Background(), map[string]float64{"A": 1, "B": 1, "C": 1})
	require.NotNil(t, result.Snapshot)
	m := result.Snapshot.Correlations

	require.Len(t, m.Matrix, 3)
	for i := range m.Matrix {
		assert.InDelta(t, 1.0, m.Matrix[i][i], 1e-9, "diagonal must be 1.0")
		for j := range m.Matrix[i] {
			assert.InDelta(t, m.Matrix[i][j], m.Matrix[j][i], 1e-12, "matrix must be symmetric")
			assert.LessOrEqual(t, math.Abs(m.Matrix[i][j]), 1.0+1e-9)
		}
	}

	// A and B alternate in opposite directions: perfectly anti-correlated.
	assert.InDelta(t, -1.0, m.Matrix[0][1], 1e-9)
}

func TestCorrelationMatrix_Rounded(t *testing.T) {
	m := CorrelationMatrix{
		Tickers: []string{"A", "B"},
		Matrix:  [][]float64{{1, 0.34567}, {0.34567, 1}},
	}

	rounded := m.Rounded(2)
	assert.Equal(t, 0.35, rounded.Matrix[0][1])
	// Full precision retained on the original
	assert.Equal(t, 0.34567, m.Matrix[0][1])
}

func TestAnalyze_AllTickersMissing(t *testing.T) {
	provider := &fakeProvider{series: history.PriceSeries{}, missing: []string{"A", "B"}}
	service := newTestService(provider)

	result := service.Analyze(context.Background(), map[string]float64{"A": 100, "B": 200})

	assert.Nil(t, result.Snapshot, "no data must yield a nil snapshot, not numbers")
	assert.ElementsMatch(t, []string{"A", "B"}, result.Missing)
}

func TestAnalyze_MissingTickerExcludedFromWeights(t *testing.T) {
	provider := &fakeProvider{
		series: history.PriceSeries{
			"A": seriesFromReturns(alternating(30, 0.01, true)),
		},
		missing: []string{"GHOST"},
	}
	service := newTestService(provider)

	result := service.Analyze(context.Background(), map[string]float64{"A": 100, "GHOST": 900})
	require.NotNil(t, result.Snapshot)

	assert.InDelta(t, 1.0, result.Snapshot.Weights["A"], 1e-9,
		"weights renormalize over tickers with history")
	_, hasGhost := result.Snapshot.Weights["GHOST"]
	assert.False(t, hasGhost)
	assert.Equal(t, []string{"GHOST"}, result.Missing)
	assert.InDelta(t, 100.0, result.Snapshot.TotalValue, 1e-9)
}

func TestAnalyze_SinglePriceIsInsufficient(t *testing.T) {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{series: history.PriceSeries{
		"A": {{Date: day, Close: 100}},
	}}
	service := newTestService(provider)

	result := service.Analyze(context.Background(), map[string]float64{"A": 100})
	assert.Nil(t, result.Snapshot)
}
