package risk

import "math"

// Snapshot holds the risk figures for one analysis run. Recomputed fresh
// every time; nothing is persisted.
type Snapshot struct {
	// VolatilityByAsset maps ticker to annualized volatility (fraction,
	// 0.25 = 25%).
	VolatilityByAsset map[string]float64 `json:"volatility_by_asset"`
	// MeanVolatility is the unweighted mean of per-asset volatilities.
	MeanVolatility float64 `json:"mean_volatility"`
	// PortfolioVolatility is the weighted average of per-asset
	// volatilities: Σ(w_i × vol_i). Deliberately NOT the stddev of the
	// combined return series; consumers track this exact figure and a
	// covariance-based one would silently shift every report.
	PortfolioVolatility float64 `json:"portfolio_volatility"`
	// VaR95 and VaR99 are historical Value-at-Risk figures on the
	// weighted portfolio return series (fraction, positive = loss).
	VaR95 float64 `json:"var_95"`
	VaR99 float64 `json:"var_99"`
	// Correlations holds the pairwise Pearson matrix at full precision;
	// handlers round for presentation.
	Correlations CorrelationMatrix `json:"correlations"`
	// Weights is the value share per ticker among tickers with history.
	Weights map[string]float64 `json:"weights"`
	// TotalValue is the market value covered by the analysis (tickers
	// with history only); the projection engine uses it as its base.
	TotalValue float64 `json:"total_value"`
	// Assets is the per-asset summary sorted by weight descending.
	Assets []AssetSummary `json:"assets"`
	// AssetCount is the number of tickers included in the analysis.
	AssetCount int `json:"asset_count"`
}

// AssetSummary is one row of the per-asset risk table.
type AssetSummary struct {
	Ticker         string   `json:"ticker"`
	Value          float64  `json:"value"`
	WeightPct      float64  `json:"weight_pct"`
	VolatilityPct  float64  `json:"volatility_pct"`
	RSI            *float64 `json:"rsi,omitempty"`
	MaxDrawdownPct *float64 `json:"max_drawdown_pct,omitempty"`
}

// Result is what an analysis run hands to the presentation layer. A nil
// Snapshot with a non-empty Missing list is the "no market data" outcome:
// downstream risk and projection stages were skipped, not failed.
type Result struct {
	Snapshot *Snapshot `json:"snapshot"`
	Missing  []string  `json:"missing,omitempty"`
}

// CorrelationMatrix is a symmetric ticker×ticker Pearson matrix with 1.0 on
// the diagonal.
type CorrelationMatrix struct {
	Tickers []string    `json:"tickers"`
	Matrix  [][]float64 `json:"matrix"`
}

// Rounded returns a copy rounded to the given number of decimal places,
// for presentation. The receiver keeps full precision.
func (m CorrelationMatrix) Rounded(places int) CorrelationMatrix {
	factor := math.Pow(10, float64(places))

	out := CorrelationMatrix{
		Tickers: m.Tickers,
		Matrix:  make([][]float64, len(m.Matrix)),
	}
	for i, row := range m.Matrix {
		out.Matrix[i] = make([]float64, len(row))
		for j, v := range row {
			out.Matrix[i][j] = math.Round(v*factor) / factor
		}
	}
	return out
}
