package history

import (
	"github.com/shayanv/portefeuille/internal/clients/yahoo"
)

// PriceSeries maps a ticker to its daily closes in ascending date order.
// Only tickers with at least one observation appear; the rest are reported
// in the missing list alongside.
type PriceSeries map[string][]yahoo.DailyClose

// Status classifies the outcome of a single ticker fetch.
type Status string

const (
	// StatusOK means the fetch returned at least one close.
	StatusOK Status = "ok"
	// StatusEmpty means the data source answered but has no history.
	StatusEmpty Status = "empty"
	// StatusError means the fetch failed at the transport or API level.
	StatusError Status = "error"
)

// Outcome is the explicit per-ticker fetch result. Empty data and
// transport errors are distinct outcomes even though both end up on the
// missing list.
type Outcome struct {
	Ticker string
	Status Status
	Closes []yahoo.DailyClose
	Err    error
}
