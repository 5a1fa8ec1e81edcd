package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RefreshJob warms the daily close cache for the portfolio's tickers.
// Registered with the scheduler to run outside market hours.
type RefreshJob struct {
	provider     *Provider
	tickers      []string
	lookbackDays int
	timeout      time.Duration
	log          zerolog.Logger
}

// NewRefreshJob creates a refresh job for the given tickers.
func NewRefreshJob(provider *Provider, tickers []string, lookbackDays int, timeout time.Duration, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		provider:     provider,
		tickers:      tickers,
		lookbackDays: lookbackDays,
		timeout:      timeout,
		log:          log.With().Str("component", "refresh_job").Logger(),
	}
}

// Name implements scheduler.Job
func (j *RefreshJob) Name() string {
	return "price_history_refresh"
}

// Run implements scheduler.Job
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	series, missing := j.provider.Fetch(ctx, j.tickers, j.lookbackDays)

	if len(series) == 0 && len(j.tickers) > 0 {
		return fmt.Errorf("no history fetched for any ticker: %s", strings.Join(missing, ", "))
	}

	if len(missing) > 0 {
		j.log.Warn().Strs("missing", missing).Msg("Some tickers have no history")
	}

	j.log.Info().Int("refreshed", len(series)).Msg("Price cache refreshed")
	return nil
}
