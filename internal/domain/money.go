package domain

import (
	"fmt"
	"math"
)

// Money is a non-negative amount in minor units (kuruş) of the store currency.
type Money int64

// MinorUnitsPerMajor is the number of minor units in one major unit.
const MinorUnitsPerMajor = 100

// Major builds a Money value from whole major units.
func Major(units int64) Money {
	return Money(units * MinorUnitsPerMajor)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return m + o
}

// Sub returns m - o, floored at zero.
func (m Money) Sub(o Money) Money {
	if o >= m {
		return 0
	}
	return m - o
}

// Mul multiplies by an integer factor.
func (m Money) Mul(n int) Money {
	return m * Money(n)
}

// MulFloat multiplies by a fractional factor, rounding half away from zero
// to the nearest minor unit.
func (m Money) MulFloat(f float64) Money {
	return Money(math.Round(float64(m) * f))
}

// Percent returns pct percent of m, rounded to the nearest minor unit.
func (m Money) Percent(pct float64) Money {
	return Money(math.Round(float64(m) * pct / 100))
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m < 0
}

// String formats the amount as major.minor, e.g. "2880.00".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/MinorUnitsPerMajor, int64(m)%MinorUnitsPerMajor)
}

// Sum adds up a list of amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}
