package risk

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/shayanv/portefeuille/internal/modules/history"
	"github.com/shayanv/portefeuille/pkg/formulas"
)

const rsiPeriod = 14

// HistoryProvider supplies price series for a set of tickers.
type HistoryProvider interface {
	Fetch(ctx context.Context, tickers []string, lookbackDays int) (history.PriceSeries, []string)
}

// Config holds the risk analysis parameters.
type Config struct {
	LookbackDays int
}

// Service runs the full risk analysis: price history, aligned returns,
// volatility, VaR and correlation.
type Service struct {
	provider HistoryProvider
	cfg      Config
	log      zerolog.Logger
}

// NewService creates a risk analysis service.
func NewService(provider HistoryProvider, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		log:      log.With().Str("component", "risk").Logger(),
	}
}

// Analyze computes a risk snapshot for the given per-ticker market values.
//
// Tickers without usable price history are excluded from every figure and
// reported in Result.Missing. When no ticker has history (or there are too
// few common dates to form a single return) the snapshot is nil: the run
// degrades to a warning, it does not fail.
func (s *Service) Analyze(ctx context.Context, values map[string]float64) Result {
	tickers := make([]string, 0, len(values))
	for ticker := range values {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	series, missing := s.provider.Fetch(ctx, tickers, s.cfg.LookbackDays)
	if len(series) == 0 {
		s.log.Warn().Strs("missing", missing).Msg("No price history for any ticker, skipping risk analysis")
		return Result{Missing: missing}
	}

	aligned := Align(series)
	if aligned.Observations() == 0 {
		s.log.Warn().
			Int("common_dates", len(aligned.Dates)).
			Msg("Not enough common dates to compute returns, skipping risk analysis")
		return Result{Missing: missing}
	}

	// Weights: value share among the tickers that made it through
	// alignment. Anything else is silently excluded.
	total := 0.0
	for _, ticker := range aligned.Tickers {
		total += values[ticker]
	}

	weights := make(map[string]float64, len(aligned.Tickers))
	for _, ticker := range aligned.Tickers {
		weights[ticker] = values[ticker] / total
	}

	snapshot := &Snapshot{
		VolatilityByAsset: make(map[string]float64, len(aligned.Tickers)),
		Weights:           weights,
		TotalValue:        total,
		AssetCount:        len(aligned.Tickers),
	}

	for _, ticker := range aligned.Tickers {
		vol := formulas.AnnualizedVolatility(aligned.Returns[ticker])
		snapshot.VolatilityByAsset[ticker] = vol
		snapshot.MeanVolatility += vol / float64(len(aligned.Tickers))
		snapshot.PortfolioVolatility += weights[ticker] * vol
	}

	portfolioReturns := aligned.PortfolioReturns(weights)
	snapshot.VaR95 = formulas.HistoricalVaR(portfolioReturns, 0.95)
	snapshot.VaR99 = formulas.HistoricalVaR(portfolioReturns, 0.99)

	snapshot.Correlations = correlationMatrix(aligned, aligned.Tickers)
	snapshot.Assets = s.assetSummaries(aligned, values, weights, snapshot.VolatilityByAsset)

	s.log.Info().
		Int("assets", snapshot.AssetCount).
		Int("observations", aligned.Observations()).
		Float64("portfolio_volatility", snapshot.PortfolioVolatility).
		Float64("var_95", snapshot.VaR95).
		Msg("Risk snapshot computed")

	return Result{Snapshot: snapshot, Missing: missing}
}

// assetSummaries builds the per-asset table, sorted by weight descending.
func (s *Service) assetSummaries(aligned Aligned, values, weights, vols map[string]float64) []AssetSummary {
	summaries := make([]AssetSummary, 0, len(aligned.Tickers))
	for _, ticker := range aligned.Tickers {
		summary := AssetSummary{
			Ticker:        ticker,
			Value:         values[ticker],
			WeightPct:     weights[ticker] * 100,
			VolatilityPct: vols[ticker] * 100,
			RSI:           formulas.CalculateRSI(aligned.Closes[ticker], rsiPeriod),
		}

		if dd := formulas.CalculateMaxDrawdown(aligned.Closes[ticker]); dd != nil {
			pct := *dd * 100
			summary.MaxDrawdownPct = &pct
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].WeightPct > summaries[j].WeightPct
	})

	return summaries
}
