package holdings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseError describes a single malformed line in the holdings file.
type ParseError struct {
	Line int
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d (%q): %v", e.Line, e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseErrors collects every malformed line so the user can fix the whole
// file in one pass instead of replaying it error by error.
type ParseErrors []*ParseError

func (es ParseErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d invalid holdings line(s): %s", len(es), strings.Join(msgs, "; "))
}

// ParseFile reads a holdings file from disk.
func ParseFile(path string) ([]Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holdings file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads holdings in the flat text format, one position per line:
//
//	ticker/entryPrice/quantity[/dividendPerUnit]
//
// Blank lines are skipped. A missing dividend field defaults to 0. Any
// malformed line is reported with its line number and raw content; all
// errors are collected before failing so nothing is silently dropped.
func Parse(r io.Reader) ([]Position, error) {
	var positions []Position
	var errs ParseErrors

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		pos, err := parseLine(line)
		if err != nil {
			errs = append(errs, &ParseError{Line: lineNo, Raw: line, Err: err})
			continue
		}

		positions = append(positions, pos)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return positions, nil
}

func parseLine(line string) (Position, error) {
	parts := strings.Split(line, "/")
	if len(parts) < 3 || len(parts) > 4 {
		return Position{}, fmt.Errorf("expected ticker/entryPrice/quantity[/dividendPerUnit], got %d field(s)", len(parts))
	}

	ticker := strings.TrimSpace(parts[0])
	if ticker == "" {
		return Position{}, fmt.Errorf("empty ticker")
	}

	entryPrice, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return Position{}, fmt.Errorf("invalid entry price %q", parts[1])
	}
	if entryPrice.LessThanOrEqual(decimal.Zero) {
		return Position{}, fmt.Errorf("entry price must be > 0, got %s", entryPrice)
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return Position{}, fmt.Errorf("invalid quantity %q", parts[2])
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Position{}, fmt.Errorf("quantity must be > 0, got %s", quantity)
	}

	dividend := decimal.Zero
	if len(parts) == 4 {
		dividend, err = decimal.NewFromString(strings.TrimSpace(parts[3]))
		if err != nil {
			return Position{}, fmt.Errorf("invalid dividend %q", parts[3])
		}
		if dividend.IsNegative() {
			return Position{}, fmt.Errorf("dividend must be >= 0, got %s", dividend)
		}
	}

	return Position{
		Ticker:          ticker,
		EntryPrice:      entryPrice,
		Quantity:        quantity,
		DividendPerUnit: dividend,
	}, nil
}
