package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoData indicates that Yahoo Finance answered normally but holds no
// price history for the symbol. Callers must treat this differently from a
// transport or API failure.
var ErrNoData = errors.New("no price data for symbol")

// Client is a Yahoo Finance API client
type Client struct {
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. The timeout applies to each
// individual call.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// GetDailyCloses fetches daily closing prices for a symbol over the last
// `days` trading days, in ascending date order.
//
// Returns ErrNoData when the API has no history for the symbol; any other
// error is a transport or API failure.
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, days int) ([]DailyClose, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", fmt.Sprintf("%dd", days))

	chart, err := c.getChart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	closes := parseCloses(chart)
	if len(closes) == 0 {
		return nil, ErrNoData
	}

	// Yahoo ranges are calendar-based so the series can run longer than
	// the requested trading-day window. Keep the most recent `days` points.
	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("days", days).
		Int("count", len(closes)).
		Msg("Fetched daily closes")

	return closes, nil
}

// GetCurrentPrice returns the most recent closing price for a symbol,
// retrying with exponential backoff on failure.
func (c *Client) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	const maxRetries = 3

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		params := url.Values{}
		params.Add("interval", "1d")
		params.Add("range", "1d")

		chart, err := c.getChart(ctx, symbol, params)
		if err == nil {
			closes := parseCloses(chart)
			if len(closes) > 0 && closes[len(closes)-1].Close > 0 {
				return closes[len(closes)-1].Close, nil
			}
			err = ErrNoData
		}

		lastErr = err
		if errors.Is(err, ErrNoData) {
			// Retrying will not conjure up history for an unknown symbol.
			break
		}

		if attempt < maxRetries-1 {
			waitTime := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn().Err(err).
				Str("symbol", symbol).
				Int("attempt", attempt+1).
				Dur("wait", waitTime).
				Msg("Failed to get price, retrying")

			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}

	return 0, fmt.Errorf("failed to get price for %s: %w", symbol, lastErr)
}

// chartResult mirrors the relevant portion of the v8 chart API response.
type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// getChart calls the Yahoo Finance v8 chart endpoint for a symbol.
func (c *Client) getChart(ctx context.Context, symbol string, params url.Values) (*chartResult, error) {
	baseURL := "https://query1.finance.yahoo.com/v8/finance/chart/" + url.QueryEscape(symbol)
	reqURL := baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("symbol %s: %w", symbol, ErrNoData)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result struct {
		Chart struct {
			Result []chartResult `json:"result"`
			Error  interface{}   `json:"error"`
		} `json:"chart"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("symbol %s: %w", symbol, ErrNoData)
	}

	return &result.Chart.Result[0], nil
}

// parseCloses extracts the non-null daily closes from a chart result, in
// ascending date order.
func parseCloses(chart *chartResult) []DailyClose {
	if len(chart.Indicators.Quote) == 0 {
		return nil
	}

	quote := chart.Indicators.Quote[0]

	var closes []DailyClose
	for i, ts := range chart.Timestamp {
		if i >= len(quote.Close) {
			break
		}

		// Yahoo sometimes returns null (decoded as 0) for holidays
		if quote.Close[i] == 0 {
			continue
		}

		closes = append(closes, DailyClose{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: quote.Close[i],
		})
	}

	return closes
}
