package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsOverdueAsOf(t *testing.T) {
	line := &PaymentSchedule{
		DueDate:     time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("4133.33"),
		Status:      ScheduleStatusDue,
	}

	// Due today is not overdue yet; the day after it is
	assert.False(t, line.IsOverdueAsOf(time.Date(2026, time.August, 15, 23, 59, 0, 0, time.UTC)))
	assert.True(t, line.IsOverdueAsOf(time.Date(2026, time.August, 16, 0, 0, 0, 0, time.UTC)))
}

func TestIsOverdueAsOfIgnoresPaidLines(t *testing.T) {
	line := &PaymentSchedule{
		DueDate: time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
		Status:  ScheduleStatusPaid,
	}

	assert.False(t, line.IsOverdueAsOf(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMarkPaidStampsPaymentDate(t *testing.T) {
	line := &PaymentSchedule{Status: ScheduleStatusOverdue}

	line.MarkPaid(time.Date(2026, time.August, 20, 14, 35, 12, 0, time.UTC))

	assert.True(t, line.IsPaid())
	assert.Equal(t, time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC), *line.PaidAt)
}
