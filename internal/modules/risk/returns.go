package risk

import (
	"sort"
	"time"

	"github.com/shayanv/portefeuille/internal/modules/history"
	"github.com/shayanv/portefeuille/pkg/formulas"
)

// Aligned holds the price and return series of all tickers on a shared
// date index (inner join on the dates every ticker traded). All slices in
// Closes have len(Dates) elements; all slices in Returns have one fewer,
// the first observation having no return.
type Aligned struct {
	Dates   []time.Time
	Tickers []string
	Closes  map[string][]float64
	Returns map[string][]float64
}

// Align inner-joins the price series of all tickers on their common dates
// and derives simple percentage returns per ticker. Weighted computations
// downstream rely on every return series sharing this identical index.
func Align(series history.PriceSeries) Aligned {
	aligned := Aligned{
		Closes:  make(map[string][]float64),
		Returns: make(map[string][]float64),
	}
	if len(series) == 0 {
		return aligned
	}

	// Count how many tickers traded on each date; common dates are those
	// every ticker has.
	counts := make(map[time.Time]int)
	for _, closes := range series {
		for _, dc := range closes {
			counts[dc.Date]++
		}
	}

	var common []time.Time
	for date, n := range counts {
		if n == len(series) {
			common = append(common, date)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })

	aligned.Dates = common
	for ticker := range series {
		aligned.Tickers = append(aligned.Tickers, ticker)
	}
	sort.Strings(aligned.Tickers)

	for _, ticker := range aligned.Tickers {
		byDate := make(map[time.Time]float64, len(series[ticker]))
		for _, dc := range series[ticker] {
			byDate[dc.Date] = dc.Close
		}

		closes := make([]float64, len(common))
		for i, date := range common {
			closes[i] = byDate[date]
		}

		aligned.Closes[ticker] = closes
		aligned.Returns[ticker] = formulas.CalculateReturns(closes)
	}

	return aligned
}

// Observations returns the number of return observations per ticker.
func (a Aligned) Observations() int {
	if len(a.Dates) < 2 {
		return 0
	}
	return len(a.Dates) - 1
}

// PortfolioReturns combines the aligned per-ticker returns into a single
// weighted portfolio return per date: Σ(w_i × r_i,t). Unlike the
// portfolio volatility figure, this is a true combination of returns
// before any statistic is taken.
func (a Aligned) PortfolioReturns(weights map[string]float64) []float64 {
	n := a.Observations()
	if n == 0 {
		return nil
	}

	portfolio := make([]float64, n)
	for ticker, weight := range weights {
		returns, ok := a.Returns[ticker]
		if !ok {
			continue
		}
		for i := 0; i < n; i++ {
			portfolio[i] += weight * returns[i]
		}
	}

	return portfolio
}
