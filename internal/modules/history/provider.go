package history

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/shayanv/portefeuille/internal/clients/yahoo"
)

// Fetcher fetches daily closes for a symbol over a trading-day window.
// Implemented by the Yahoo Finance client.
type Fetcher interface {
	GetDailyCloses(ctx context.Context, symbol string, days int) ([]yahoo.DailyClose, error)
}

// Provider assembles price histories for a set of tickers. Per-ticker
// failures are isolated: one bad ticker never aborts the others.
type Provider struct {
	fetcher Fetcher
	cache   *Cache // optional
	log     zerolog.Logger
}

// NewProvider creates a price history provider. The cache may be nil.
func NewProvider(fetcher Fetcher, cache *Cache, log zerolog.Logger) *Provider {
	return &Provider{
		fetcher: fetcher,
		cache:   cache,
		log:     log.With().Str("component", "history").Logger(),
	}
}

// Fetch returns the price series for every ticker that has data, plus the
// list of tickers with none. When every ticker is missing the series is
// empty and the missing list holds the full input set; that is a normal
// outcome, not an error, and callers must skip risk computation for it.
func (p *Provider) Fetch(ctx context.Context, tickers []string, lookbackDays int) (PriceSeries, []string) {
	series := make(PriceSeries)
	var missing []string

	for _, ticker := range tickers {
		outcome := p.fetchOne(ctx, ticker, lookbackDays)
		switch outcome.Status {
		case StatusOK:
			series[ticker] = outcome.Closes
		case StatusEmpty:
			p.log.Warn().Str("ticker", ticker).Msg("No price history")
			missing = append(missing, ticker)
		case StatusError:
			p.log.Warn().Err(outcome.Err).Str("ticker", ticker).Msg("Price history fetch failed")
			missing = append(missing, ticker)
		}
	}

	p.log.Info().
		Int("requested", len(tickers)).
		Int("fetched", len(series)).
		Int("missing", len(missing)).
		Msg("Price histories assembled")

	return series, missing
}

// fetchOne resolves a single ticker to an explicit outcome. A transport
// failure falls back to cached closes when any exist.
func (p *Provider) fetchOne(ctx context.Context, ticker string, lookbackDays int) Outcome {
	closes, err := p.fetcher.GetDailyCloses(ctx, ticker, lookbackDays)
	if err == nil {
		if p.cache != nil {
			if cacheErr := p.cache.Store(ticker, closes); cacheErr != nil {
				p.log.Warn().Err(cacheErr).Str("ticker", ticker).Msg("Failed to cache closes")
			}
		}
		return Outcome{Ticker: ticker, Status: StatusOK, Closes: closes}
	}

	if errors.Is(err, yahoo.ErrNoData) {
		return Outcome{Ticker: ticker, Status: StatusEmpty, Err: err}
	}

	if p.cache != nil {
		cached, cacheErr := p.cache.Load(ticker, lookbackDays)
		if cacheErr == nil && len(cached) > 0 {
			p.log.Warn().Err(err).
				Str("ticker", ticker).
				Int("cached", len(cached)).
				Msg("Fetch failed, serving cached closes")
			return Outcome{Ticker: ticker, Status: StatusOK, Closes: cached}
		}
	}

	return Outcome{Ticker: ticker, Status: StatusError, Err: err}
}
