package holdings

import "github.com/shopspring/decimal"

// Position represents one line of the holdings file: a single averaged
// entry for a ticker. Immutable once parsed.
type Position struct {
	Ticker          string          `json:"ticker"`
	EntryPrice      decimal.Decimal `json:"entry_price"`
	Quantity        decimal.Decimal `json:"quantity"`
	DividendPerUnit decimal.Decimal `json:"dividend_per_unit"`
}

// TotalDividends returns the dividends collected for the whole position.
func (p Position) TotalDividends() decimal.Decimal {
	return p.DividendPerUnit.Mul(p.Quantity)
}

// Invested returns the amount originally invested in the position.
func (p Position) Invested() decimal.Decimal {
	return p.EntryPrice.Mul(p.Quantity)
}

// Holding is a valued position. Price-dependent fields are nil when no
// current price could be fetched for the ticker.
type Holding struct {
	Ticker         string   `json:"ticker"`
	EntryPrice     float64  `json:"entry_price"`
	Quantity       float64  `json:"quantity"`
	TotalDividends float64  `json:"total_dividends"`
	CurrentPrice   *float64 `json:"current_price,omitempty"`
	MarketValue    *float64 `json:"market_value,omitempty"`
	PerformancePct *float64 `json:"performance_pct,omitempty"`
	YieldOnCostPct *float64 `json:"yield_on_cost_pct,omitempty"`
	WeightPct      *float64 `json:"weight_pct,omitempty"`
}

// Summary aggregates the whole portfolio. Percentage fields are nil when
// their denominator is zero (nothing invested).
type Summary struct {
	Invested          float64  `json:"invested"`
	MarketValue       float64  `json:"market_value"`
	PerformancePct    *float64 `json:"performance_pct,omitempty"`
	TotalDividends    float64  `json:"total_dividends"`
	AvgYieldOnCostPct *float64 `json:"avg_yield_on_cost_pct,omitempty"`
}

// Valuation is the full result of valuing a portfolio against current
// prices. Weights contains the value share (fraction summing to 1) of each
// ticker that has a current price; Unpriced lists the tickers that do not.
type Valuation struct {
	Holdings []Holding          `json:"holdings"`
	Summary  Summary            `json:"summary"`
	Weights  map[string]float64 `json:"weights"`
	Unpriced []string           `json:"unpriced,omitempty"`
}
