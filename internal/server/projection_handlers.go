package server

import (
	"net/http"
	"strconv"

	"github.com/shayanv/portefeuille/internal/modules/projection"
)

// projectionResponse wraps the projection result. Projection is null when
// the parameters could not be derived because no market data was
// available.
type projectionResponse struct {
	Projection *projection.Result `json:"projection"`
	Missing    []string           `json:"missing,omitempty"`
	Warning    string             `json:"warning,omitempty"`
}

// handleProjections projects future portfolio value. Defaults come from
// the latest risk run: base value is the covered market value, volatility
// the mean asset volatility, expected return the configured rate. Each can
// be overridden with the query parameters `value`, `return_pct` and
// `vol_pct`.
func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	value, hasValue, err := queryFloat(r, "value")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid value parameter")
		return
	}

	returnPct, hasReturn, err := queryFloat(r, "return_pct")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid return_pct parameter")
		return
	}

	volPct, hasVol, err := queryFloat(r, "vol_pct")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid vol_pct parameter")
		return
	}

	if !hasReturn {
		returnPct = s.cfg.ExpectedReturnPct
	}

	if !hasValue || !hasVol {
		valuation := s.holdings.Value(r.Context(), s.positions)
		result := s.risk.Analyze(r.Context(), marketValues(valuation))
		if result.Snapshot == nil {
			s.writeJSON(w, http.StatusOK, projectionResponse{
				Missing: result.Missing,
				Warning: "no market data to derive projection parameters from",
			})
			return
		}

		if !hasValue {
			value = result.Snapshot.TotalValue
		}
		if !hasVol {
			volPct = result.Snapshot.MeanVolatility * 100
		}
	}

	result := s.projection.Project(value, returnPct, volPct)
	s.writeJSON(w, http.StatusOK, projectionResponse{Projection: &result})
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string) (float64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}

	return val, true, nil
}
