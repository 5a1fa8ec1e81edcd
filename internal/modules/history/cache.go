package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shayanv/portefeuille/internal/clients/yahoo"
)

const dateLayout = "2006-01-02"

// Cache persists daily closes in sqlite so that a transport failure can be
// served from the last successful fetch.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCache creates a cache backed by the given database.
func NewCache(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "history_cache").Logger(),
	}
}

// Store upserts the closes for a symbol.
func (c *Cache) Store(symbol string, closes []yahoo.DailyClose) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO daily_closes (symbol, date, close_price)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close_price = excluded.close_price
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, dc := range closes {
		if _, err := stmt.Exec(symbol, dc.Date.Format(dateLayout), dc.Close); err != nil {
			return fmt.Errorf("failed to upsert close for %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit closes: %w", err)
	}

	c.log.Debug().Str("symbol", symbol).Int("count", len(closes)).Msg("Cached daily closes")
	return nil
}

// Load returns up to `limit` most recent cached closes for a symbol, in
// ascending date order. An unknown symbol yields an empty slice, not an
// error.
func (c *Cache) Load(symbol string, limit int) ([]yahoo.DailyClose, error) {
	rows, err := c.db.Query(`
		SELECT date, close_price
		FROM daily_closes
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached closes: %w", err)
	}
	defer rows.Close()

	var closes []yahoo.DailyClose
	for rows.Next() {
		var dateStr string
		var price float64
		if err := rows.Scan(&dateStr, &price); err != nil {
			return nil, fmt.Errorf("failed to scan cached close: %w", err)
		}

		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid cached date %q: %w", dateStr, err)
		}

		closes = append(closes, yahoo.DailyClose{Date: date, Close: price})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached closes: %w", err)
	}

	// Query returns newest first; flip to ascending.
	for i, j := 0, len(closes)-1; i < j; i, j = i+1, j-1 {
		closes[i], closes[j] = closes[j], closes[i]
	}

	return closes, nil
}
