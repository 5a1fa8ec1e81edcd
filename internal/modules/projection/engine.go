package projection

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/shayanv/portefeuille/pkg/formulas"
)

// Config holds the projection parameters.
type Config struct {
	// Simulations is the number of Monte Carlo trajectories per horizon.
	Simulations int
	// HorizonYears are the horizons to report, in years.
	HorizonYears []int
}

// HorizonProjection is the projected portfolio value at one horizon.
type HorizonProjection struct {
	Years int `json:"years"`
	// Deterministic is fixed-rate compounding: V × (1 + r/100)^years.
	Deterministic float64 `json:"deterministic"`
	// Median, P5 and P95 summarize the simulated ending values.
	Median float64 `json:"median"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
}

// Result is the full projection output handed to the presentation layer.
type Result struct {
	CurrentValue    float64             `json:"current_value"`
	AnnualReturnPct float64             `json:"annual_return_pct"`
	AnnualVolPct    float64             `json:"annual_vol_pct"`
	Simulations     int                 `json:"simulations"`
	Horizons        []HorizonProjection `json:"horizons"`
}

// Engine projects portfolio value over a set of horizons, both with fixed-
// rate compounding and with Monte Carlo simulation of yearly normal
// returns.
type Engine struct {
	cfg Config
	src rand.Source
	log zerolog.Logger
}

// NewEngine creates a projection engine. A nil src gives time-seeded,
// non-deterministic draws; tests inject a fixed source for reproducible
// trajectories.
func NewEngine(cfg Config, src rand.Source, log zerolog.Logger) *Engine {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>32)
	}
	return &Engine{
		cfg: cfg,
		src: src,
		log: log.With().Str("component", "projection").Logger(),
	}
}

// Deterministic returns the fixed-rate projected value after the given
// number of years.
func Deterministic(value, annualReturnPct float64, years int) float64 {
	return value * math.Pow(1+annualReturnPct/100, float64(years))
}

// Project runs the full projection for a portfolio currently worth value,
// with an expected annual return and annual volatility given in percent.
//
// Each simulated trajectory compounds the value through independent yearly
// steps, each step drawing its return from N(r/100, σ/100). Yearly steps
// are enough: only annual horizons are reported, so finer time slicing
// would multiply the work without changing the output.
func (e *Engine) Project(value, annualReturnPct, annualVolPct float64) Result {
	dist := distuv.Normal{
		Mu:    annualReturnPct / 100,
		Sigma: annualVolPct / 100,
		Src:   e.src,
	}

	result := Result{
		CurrentValue:    value,
		AnnualReturnPct: annualReturnPct,
		AnnualVolPct:    annualVolPct,
		Simulations:     e.cfg.Simulations,
		Horizons:        make([]HorizonProjection, 0, len(e.cfg.HorizonYears)),
	}

	for _, years := range e.cfg.HorizonYears {
		endValues := make([]float64, e.cfg.Simulations)
		for sim := 0; sim < e.cfg.Simulations; sim++ {
			val := value
			for y := 0; y < years; y++ {
				val *= 1 + dist.Rand()
			}
			endValues[sim] = val
		}

		result.Horizons = append(result.Horizons, HorizonProjection{
			Years:         years,
			Deterministic: Deterministic(value, annualReturnPct, years),
			Median:        formulas.Median(endValues),
			P5:            formulas.Percentile(endValues, 5),
			P95:           formulas.Percentile(endValues, 95),
		})
	}

	e.log.Debug().
		Float64("value", value).
		Float64("return_pct", annualReturnPct).
		Float64("vol_pct", annualVolPct).
		Int("simulations", e.cfg.Simulations).
		Msg("Projection computed")

	return result
}
