package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shayanv/portefeuille/internal/clients/yahoo"
	"github.com/shayanv/portefeuille/internal/database"
	"github.com/shayanv/portefeuille/pkg/logger"
)

type fakeFetcher struct {
	closes map[string][]yahoo.DailyClose
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) GetDailyCloses(_ context.Context, symbol string, _ int) ([]yahoo.DailyClose, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.closes[symbol], nil
}

func someCloses(n int, start float64) []yahoo.DailyClose {
	closes := make([]yahoo.DailyClose, n)
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range closes {
		closes[i] = yahoo.DailyClose{Date: day.AddDate(0, 0, i), Close: start + float64(i)}
	}
	return closes
}

func TestProvider_Fetch_IsolatesFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		closes: map[string][]yahoo.DailyClose{
			"AAPL":  someCloses(5, 100),
			"MC.PA": someCloses(5, 600),
		},
		errs: map[string]error{
			"BROKEN": fmt.Errorf("connection reset"),
			"EMPTY":  fmt.Errorf("empty: %w", yahoo.ErrNoData),
		},
	}
	provider := NewProvider(fetcher, nil, logger.New(logger.Config{Level: "error"}))

	series, missing := provider.Fetch(context.Background(), []string{"AAPL", "BROKEN", "EMPTY", "MC.PA"}, 252)

	require.Len(t, series, 2)
	assert.Contains(t, series, "AAPL")
	assert.Contains(t, series, "MC.PA")
	assert.ElementsMatch(t, []string{"BROKEN", "EMPTY"}, missing)

	// Every ticker was attempted despite failures in the middle
	assert.Equal(t, []string{"AAPL", "BROKEN", "EMPTY", "MC.PA"}, fetcher.calls)
}

func TestProvider_Fetch_AllMissingIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{
		errs: map[string]error{
			"A": errors.New("down"),
			"B": fmt.Errorf("gone: %w", yahoo.ErrNoData),
		},
	}
	provider := NewProvider(fetcher, nil, logger.New(logger.Config{Level: "error"}))

	series, missing := provider.Fetch(context.Background(), []string{"A", "B"}, 252)

	assert.Empty(t, series)
	assert.ElementsMatch(t, []string{"A", "B"}, missing)
}

func TestProvider_fetchOne_Outcomes(t *testing.T) {
	fetcher := &fakeFetcher{
		closes: map[string][]yahoo.DailyClose{"OK": someCloses(3, 10)},
		errs: map[string]error{
			"EMPTY": fmt.Errorf("no data: %w", yahoo.ErrNoData),
			"DOWN":  errors.New("transport failure"),
		},
	}
	provider := NewProvider(fetcher, nil, logger.New(logger.Config{Level: "error"}))

	ctx := context.Background()
	assert.Equal(t, StatusOK, provider.fetchOne(ctx, "OK", 252).Status)
	assert.Equal(t, StatusEmpty, provider.fetchOne(ctx, "EMPTY", 252).Status)
	assert.Equal(t, StatusError, provider.fetchOne(ctx, "DOWN", 252).Status)
}

func TestProvider_Fetch_CacheFallbackOnTransportError(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	log := logger.New(logger.Config{Level: "error"})
	cache := NewCache(db.Conn(), log)

	// First run succeeds and populates the cache
	fetcher := &fakeFetcher{closes: map[string][]yahoo.DailyClose{"AAPL": someCloses(5, 100)}}
	provider := NewProvider(fetcher, cache, log)
	series, missing := provider.Fetch(context.Background(), []string{"AAPL"}, 252)
	require.Len(t, series["AAPL"], 5)
	require.Empty(t, missing)

	// Second run fails at the transport level but is served from the cache
	fetcher.errs = map[string]error{"AAPL": errors.New("connection refused")}
	fetcher.closes = nil
	series, missing = provider.Fetch(context.Background(), []string{"AAPL"}, 252)

	require.Empty(t, missing)
	require.Len(t, series["AAPL"], 5)
	assert.Equal(t, 100.0, series["AAPL"][0].Close)
	assert.Equal(t, 104.0, series["AAPL"][4].Close)
}

func TestCache_StoreLoadRoundTrip(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	cache := NewCache(db.Conn(), logger.New(logger.Config{Level: "error"}))

	closes := someCloses(10, 50)
	require.NoError(t, cache.Store("SAN", closes))

	// Upsert is idempotent
	require.NoError(t, cache.Store("SAN", closes))

	loaded, err := cache.Load("SAN", 4)
	require.NoError(t, err)
	require.Len(t, loaded, 4)

	// Ascending order, most recent window
	assert.Equal(t, 56.0, loaded[0].Close)
	assert.Equal(t, 59.0, loaded[3].Close)
	assert.True(t, loaded[0].Date.Before(loaded[1].Date))

	unknown, err := cache.Load("GHOST", 10)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}
