package holdings

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// QuoteSource provides the latest price for a ticker. Implemented by the
// Yahoo Finance client.
type QuoteSource interface {
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// Service values a portfolio against current market prices.
type Service struct {
	quotes QuoteSource
	log    zerolog.Logger
}

// NewService creates a new valuation service.
func NewService(quotes QuoteSource, log zerolog.Logger) *Service {
	return &Service{
		quotes: quotes,
		log:    log.With().Str("component", "holdings").Logger(),
	}
}

// Value fetches current prices and computes the portfolio valuation.
//
// A failed price fetch never aborts the run: the holding stays in the
// result without price-dependent figures and is excluded from the weight
// vector.
func (s *Service) Value(ctx context.Context, positions []Position) *Valuation {
	v := &Valuation{
		Holdings: make([]Holding, 0, len(positions)),
		Weights:  make(map[string]float64),
	}

	invested := decimal.Zero
	totalDividends := decimal.Zero
	marketValue := decimal.Zero
	values := make(map[string]decimal.Decimal, len(positions))

	for _, pos := range positions {
		h := Holding{
			Ticker:         pos.Ticker,
			EntryPrice:     pos.EntryPrice.InexactFloat64(),
			Quantity:       pos.Quantity.InexactFloat64(),
			TotalDividends: pos.TotalDividends().InexactFloat64(),
		}

		invested = invested.Add(pos.Invested())
		totalDividends = totalDividends.Add(pos.TotalDividends())

		if yield, ok := pctOf(pos.TotalDividends(), pos.Invested()); ok {
			h.YieldOnCostPct = &yield
		}

		price, err := s.quotes.GetCurrentPrice(ctx, pos.Ticker)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", pos.Ticker).Msg("No current price")
			v.Unpriced = append(v.Unpriced, pos.Ticker)
			v.Holdings = append(v.Holdings, h)
			continue
		}

		current := decimal.NewFromFloat(price)
		value := current.Mul(pos.Quantity)
		perf, _ := pctOf(current.Sub(pos.EntryPrice), pos.EntryPrice)

		priceF := current.InexactFloat64()
		valueF := value.InexactFloat64()
		h.CurrentPrice = &priceF
		h.MarketValue = &valueF
		h.PerformancePct = &perf

		marketValue = marketValue.Add(value)
		values[pos.Ticker] = value
		v.Holdings = append(v.Holdings, h)
	}

	// Weights are the value share of each priced holding.
	if marketValue.IsPositive() {
		for i := range v.Holdings {
			value, ok := values[v.Holdings[i].Ticker]
			if !ok {
				continue
			}
			weight := value.Div(marketValue)
			v.Weights[v.Holdings[i].Ticker] = weight.InexactFloat64()

			weightPct, _ := pctOf(value, marketValue)
			v.Holdings[i].WeightPct = &weightPct
		}
	}

	v.Summary = Summary{
		Invested:       invested.InexactFloat64(),
		MarketValue:    marketValue.InexactFloat64(),
		TotalDividends: totalDividends.InexactFloat64(),
	}

	if perf, ok := pctOf(marketValue.Sub(invested), invested); ok {
		v.Summary.PerformancePct = &perf
	}

	if yield, ok := pctOf(totalDividends, invested); ok {
		v.Summary.AvgYieldOnCostPct = &yield
	}

	s.log.Info().
		Int("positions", len(positions)).
		Int("unpriced", len(v.Unpriced)).
		Float64("market_value", v.Summary.MarketValue).
		Msg("Portfolio valued")

	return v
}

// pctOf returns num/den × 100 rounded to two decimals, and false when the
// denominator is zero (the percentage is undefined).
func pctOf(num, den decimal.Decimal) (float64, bool) {
	if den.IsZero() {
		return 0, false
	}
	return num.Div(den).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64(), true
}
