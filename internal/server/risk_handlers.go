package server

import (
	"net/http"

	"github.com/shayanv/portefeuille/internal/modules/holdings"
	"github.com/shayanv/portefeuille/internal/modules/risk"
)

// handlePortfolio returns the valued holdings and the portfolio summary.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	valuation := s.holdings.Value(r.Context(), s.positions)
	s.writeJSON(w, http.StatusOK, valuation)
}

// riskResponse is the wire form of a risk analysis run. Snapshot is null
// when no ticker had usable price history; Warning then says so.
type riskResponse struct {
	Snapshot *risk.Snapshot `json:"snapshot"`
	Missing  []string       `json:"missing,omitempty"`
	Warning  string         `json:"warning,omitempty"`
}

// handleRisk values the portfolio and returns the risk snapshot.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	valuation := s.holdings.Value(r.Context(), s.positions)
	result := s.risk.Analyze(r.Context(), marketValues(valuation))

	resp := riskResponse{
		Snapshot: result.Snapshot,
		Missing:  result.Missing,
	}

	if resp.Snapshot == nil {
		resp.Warning = "no price history available for any ticker"
	} else {
		// Correlations are rounded for display only; the snapshot keeps
		// full precision internally.
		resp.Snapshot.Correlations = resp.Snapshot.Correlations.Rounded(2)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// marketValues extracts the per-ticker market values of priced holdings.
func marketValues(v *holdings.Valuation) map[string]float64 {
	values := make(map[string]float64, len(v.Holdings))
	for _, h := range v.Holdings {
		if h.MarketValue != nil {
			values[h.Ticker] = *h.MarketValue
		}
	}
	return values
}
