package holdings

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidLines(t *testing.T) {
	input := "AAPL/150.0/10/2.5\n\nMC.PA/640.50/3\n"

	positions, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "AAPL", positions[0].Ticker)
	assert.True(t, positions[0].EntryPrice.Equal(decimal.NewFromFloat(150.0)))
	assert.True(t, positions[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, positions[0].TotalDividends().Equal(decimal.NewFromFloat(25.0)),
		"AAPL/150.0/10/2.5 must yield total dividends of 25.0")

	// Missing dividend field defaults to 0
	assert.Equal(t, "MC.PA", positions[1].Ticker)
	assert.True(t, positions[1].DividendPerUnit.IsZero())
	assert.True(t, positions[1].TotalDividends().IsZero())
}

func TestParse_CollectsAllErrors(t *testing.T) {
	input := "AAPL/150.0/10\nBAD/abc/10\n\nWORSE/100\nOK/10/1\n"

	positions, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Nil(t, positions)

	var errs ParseErrors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 2)

	// Line numbers and raw content are reported
	assert.Equal(t, 2, errs[0].Line)
	assert.Equal(t, "BAD/abc/10", errs[0].Raw)
	assert.Equal(t, 4, errs[1].Line)
	assert.Contains(t, errs[1].Error(), "WORSE/100")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"zero entry price", "AAPL/0/10"},
		{"negative quantity", "AAPL/150/-1"},
		{"negative dividend", "AAPL/150/10/-2"},
		{"empty ticker", "/150/10"},
		{"too many fields", "AAPL/150/10/2/9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.line))
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	positions, err := Parse(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, positions)
}
