package risk

import (
	"math"

	"github.com/shayanv/portefeuille/pkg/formulas"
)

// correlationMatrix computes the pairwise Pearson correlation of the
// aligned return series for the given tickers. The matrix is symmetric
// with 1.0 on the diagonal and is kept at full precision; presentation
// rounding happens via CorrelationMatrix.Rounded.
func correlationMatrix(aligned Aligned, tickers []string) CorrelationMatrix {
	m := CorrelationMatrix{
		Tickers: tickers,
		Matrix:  make([][]float64, len(tickers)),
	}

	for i := range tickers {
		m.Matrix[i] = make([]float64, len(tickers))
		m.Matrix[i][i] = 1.0
	}

	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			corr := formulas.Correlation(aligned.Returns[tickers[i]], aligned.Returns[tickers[j]])
			if math.IsNaN(corr) {
				// A zero-variance series has no defined correlation.
				corr = 0
			}
			m.Matrix[i][j] = corr
			m.Matrix[j][i] = corr
		}
	}

	return m
}
