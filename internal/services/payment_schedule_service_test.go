package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/motofin/motofin-api/internal/models"
)

func scheduleTestLoan(principal, rate string, years int) *models.LoanApplication {
	return &models.LoanApplication{
		ID:              1,
		PrincipalAmount: decimal.RequireFromString(principal),
		InterestRate:    decimal.RequireFromString(rate),
		FinancingTerm: models.FinancingTerm{
			ID:           1,
			TermYears:    years,
			InterestRate: decimal.RequireFromString(rate),
		},
	}
}

func TestBuildScheduleTwoYearLoan(t *testing.T) {
	svc := NewPaymentScheduleService()
	loan := scheduleTestLoan("80000.00", "12.00", 2)
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	schedules, err := svc.BuildSchedule(loan, start)
	assert.NoError(t, err)
	assert.Len(t, schedules, 24)

	// 80000 × 12% × 2y = 19200 interest, (80000+19200)/24 = 4133.33/month
	for i := 0; i < 23; i++ {
		assert.Equal(t, "4133.33", schedules[i].TotalAmount.StringFixed(2), "installment %d", i+1)
		assert.Equal(t, models.ScheduleStatusDue, schedules[i].Status)
	}

	grandTotal := decimal.Zero
	for i := range schedules {
		grandTotal = grandTotal.Add(schedules[i].TotalAmount)
	}
	assert.Equal(t, "99200.00", grandTotal.StringFixed(2))
}

func TestBuildScheduleColumnsSumExactly(t *testing.T) {
	svc := NewPaymentScheduleService()
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		principal string
		rate      string
		years     int
	}{
		{"80000.00", "12.00", 2},
		{"45000.00", "10.50", 1},
		{"123456.78", "15.25", 3},
		{"9999.99", "0.00", 1},
	}

	for _, tc := range cases {
		loan := scheduleTestLoan(tc.principal, tc.rate, tc.years)
		schedules, err := svc.BuildSchedule(loan, start)
		assert.NoError(t, err)
		assert.Len(t, schedules, tc.years*12)

		principalSum := decimal.Zero
		interestSum := decimal.Zero
		monthly := loan.CalculateMonthlyPayment()
		for i := range schedules {
			line := &schedules[i]
			assert.True(t, line.TotalAmount.Equal(line.PrincipalAmount.Add(line.InterestAmount)),
				"%s@%s line %d: total must equal principal+interest", tc.principal, tc.rate, line.Sequence)
			if i < len(schedules)-1 {
				assert.True(t, line.TotalAmount.Equal(monthly),
					"%s@%s line %d: flat installment", tc.principal, tc.rate, line.Sequence)
			}
			principalSum = principalSum.Add(line.PrincipalAmount)
			interestSum = interestSum.Add(line.InterestAmount)
		}

		assert.True(t, principalSum.Equal(loan.PrincipalAmount),
			"%s@%s: principal column sums to %s", tc.principal, tc.rate, principalSum)
		assert.True(t, interestSum.Equal(loan.TotalInterest()),
			"%s@%s: interest column sums to %s", tc.principal, tc.rate, interestSum)
	}
}

func TestBuildScheduleDueDatesAdvanceMonthly(t *testing.T) {
	svc := NewPaymentScheduleService()
	loan := scheduleTestLoan("60000.00", "10.00", 1)
	start := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	schedules, err := svc.BuildSchedule(loan, start)
	assert.NoError(t, err)
	assert.Len(t, schedules, 12)

	// Day-of-month clamps on short months instead of rolling over
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), schedules[0].DueDate)
	assert.Equal(t, time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC), schedules[2].DueDate)
	assert.Equal(t, time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC), schedules[11].DueDate)

	for i := range schedules {
		assert.Equal(t, i+1, schedules[i].Sequence)
	}
}

func TestBuildScheduleEmptyForNonPositivePrincipal(t *testing.T) {
	svc := NewPaymentScheduleService()

	for _, principal := range []string{"0.00", "-100.00"} {
		loan := scheduleTestLoan(principal, "12.00", 2)
		schedules, err := svc.BuildSchedule(loan, time.Now())
		assert.NoError(t, err, "principal %s", principal)
		assert.Empty(t, schedules, "principal %s", principal)
	}
}

func TestBuildScheduleRejectsEmptyTerm(t *testing.T) {
	svc := NewPaymentScheduleService()
	loan := scheduleTestLoan("50000.00", "12.00", 0)

	schedules, err := svc.BuildSchedule(loan, time.Now())
	assert.Nil(t, schedules)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "financing_term_id", verr.Field)
}

func TestBuildScheduleZeroRateHasNoInterest(t *testing.T) {
	svc := NewPaymentScheduleService()
	loan := scheduleTestLoan("12000.00", "0.00", 1)

	schedules, err := svc.BuildSchedule(loan, time.Now())
	assert.NoError(t, err)

	for i := range schedules {
		assert.True(t, schedules[i].InterestAmount.IsZero(), "line %d", schedules[i].Sequence)
		assert.Equal(t, "1000.00", schedules[i].TotalAmount.StringFixed(2))
	}
}
