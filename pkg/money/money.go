// Package money holds the decimal and calendar helpers shared by the loan
// amortization and risk scoring code. All monetary amounts are kept as
// shopspring decimals and rounded half-up to two places.
package money

import (
	"time"

	"github.com/shopspring/decimal"
)

// Zero is the canonical 0.00 amount.
var Zero = decimal.NewFromInt(0)

// Round2 rounds an amount half-up to two decimal places. Amounts in this
// system are never negative, so Round (half away from zero) is half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundInt rounds half-up to a whole number and returns it as int.
func RoundInt(d decimal.Decimal) int {
	return int(d.Round(0).IntPart())
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// AddMonths advances a date by n calendar months, preserving the day of
// month where possible and clamping to the target month's length
// (Jan 31 + 1 month = Feb 28/29). time.AddDate normalizes overflow instead
// of clamping, so the arithmetic is done on year/month directly.
func AddMonths(start time.Time, months int) time.Time {
	year := start.Year()
	month := int(start.Month()) - 1 + months
	year += month / 12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}

	day := start.Day()
	if last := daysInMonth(year, time.Month(month+1)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month+1), day,
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
