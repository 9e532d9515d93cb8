package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"4133.3333": "4133.33",
		"4133.335":  "4133.34",
		"0.005":     "0.01",
		"19200":     "19200",
	}
	for in, want := range cases {
		d, err := decimal.NewFromString(in)
		assert.NoError(t, err)
		assert.Equal(t, want, Round2(d).String(), "rounding %s", in)
	}
}

func TestRoundInt(t *testing.T) {
	assert.Equal(t, 47, RoundInt(decimal.RequireFromString("47.00")))
	assert.Equal(t, 48, RoundInt(decimal.RequireFromString("47.50")))
	assert.Equal(t, 47, RoundInt(decimal.RequireFromString("47.49")))
}

func TestAddMonthsClampsToMonthLength(t *testing.T) {
	// Leap year February
	assert.Equal(t, date(2024, time.February, 29), AddMonths(date(2024, time.January, 31), 1))
	// Non-leap February
	assert.Equal(t, date(2023, time.February, 28), AddMonths(date(2023, time.January, 31), 1))
	// 30-day month
	assert.Equal(t, date(2024, time.April, 30), AddMonths(date(2024, time.March, 31), 1))
}

func TestAddMonthsPreservesDay(t *testing.T) {
	assert.Equal(t, date(2024, time.July, 15), AddMonths(date(2024, time.January, 15), 6))
	assert.Equal(t, date(2026, time.January, 15), AddMonths(date(2024, time.January, 15), 24))
}

func TestAddMonthsYearRollover(t *testing.T) {
	assert.Equal(t, date(2025, time.January, 31), AddMonths(date(2024, time.December, 31), 1))
	assert.Equal(t, date(2024, time.November, 30), AddMonths(date(2024, time.December, 31), -1))
}
