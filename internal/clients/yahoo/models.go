package yahoo

import "time"

// DailyClose represents a single daily closing price
type DailyClose struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}
