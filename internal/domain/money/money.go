// Package money implements exact decimal-string arithmetic for monetary values.
//
// Every monetary comparison, aggregation, and threshold evaluation in the
// engine goes through this package. Values are carried as decimal strings and
// computed on sign + arbitrary-precision coefficient + exponent; nothing is
// ever converted to floating point.
package money

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// workingPrecision is the fixed number of fractional digits used for the one
// division the engine performs (bottleneck ratio evaluation).
const workingPrecision = 16

// Parse converts a decimal string into its exact representation.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

// ParseOrZero converts a decimal string, resolving malformed input to zero.
// Used on paths that must never fail (filtering, display overlays).
func ParseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Add returns a+b as a decimal string.
func Add(a, b string) (string, error) {
	da, err := Parse(a)
	if err != nil {
		return "", err
	}
	db, err := Parse(b)
	if err != nil {
		return "", err
	}
	return da.Add(db).String(), nil
}

// Sum adds any number of decimal strings. An empty argument list sums to "0".
func Sum(vals ...string) (string, error) {
	total := decimal.Zero
	for _, v := range vals {
		d, err := Parse(v)
		if err != nil {
			return "", err
		}
		total = total.Add(d)
	}
	return total.String(), nil
}

// Compare returns -1, 0, or 1 for a < b, a == b, a > b.
func Compare(a, b string) (int, error) {
	da, err := Parse(a)
	if err != nil {
		return 0, err
	}
	db, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return da.Cmp(db), nil
}

// CompareOrDefault compares a and b, resolving malformed input to def instead
// of an error. Filtering paths use it so bad data never throws.
func CompareOrDefault(a, b string, def int) int {
	da, errA := decimal.NewFromString(strings.TrimSpace(a))
	db, errB := decimal.NewFromString(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return def
	}
	return da.Cmp(db)
}

// Abs returns the absolute value of a decimal string.
func Abs(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return d.Abs().String(), nil
}

// Neg returns the negation of a decimal string.
func Neg(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return d.Neg().String(), nil
}

// IsZero reports whether s is exactly zero.
func IsZero(s string) (bool, error) {
	d, err := Parse(s)
	if err != nil {
		return false, err
	}
	return d.IsZero(), nil
}

// FromAtoms converts an arbitrary-precision integer count of atomic units into
// a decimal string with the given fractional precision. The sign is preserved
// separately from the magnitude, and the digit sequence is padded so a value
// smaller than one whole unit renders as "0.0…x" rather than ".x".
func FromAtoms(atoms *big.Int, precision int) string {
	if atoms == nil {
		return "0"
	}
	if precision <= 0 {
		return atoms.String()
	}
	d := decimal.NewFromBigInt(new(big.Int).Set(atoms), int32(-precision))
	return d.StringFixed(int32(precision))
}

// Ratio returns num/den at the fixed working precision.
func Ratio(num, den string) (string, error) {
	dn, err := Parse(num)
	if err != nil {
		return "", err
	}
	dd, err := Parse(den)
	if err != nil {
		return "", err
	}
	if dd.IsZero() {
		return "", fmt.Errorf("ratio %s/%s: division by zero", num, den)
	}
	return dn.DivRound(dd, workingPrecision).String(), nil
}

// RatioBelow reports whether num/den < threshold, evaluated at the fixed
// working precision. Policy for degenerate input, chosen so the bottleneck
// path never throws:
//   - den zero or negative: true (a zero-limit line is always a bottleneck)
//   - malformed den: true (same degenerate-limit policy)
//   - malformed num or threshold: false (no flag on undecidable input)
func RatioBelow(num, den, threshold string) bool {
	dd, err := decimal.NewFromString(strings.TrimSpace(den))
	if err != nil || dd.Sign() <= 0 {
		return true
	}
	dn, err := decimal.NewFromString(strings.TrimSpace(num))
	if err != nil {
		return false
	}
	dt, err := decimal.NewFromString(strings.TrimSpace(threshold))
	if err != nil {
		return false
	}
	return dn.DivRound(dd, workingPrecision).Cmp(dt) < 0
}
